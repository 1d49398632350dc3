package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/mutation"
	"github.com/polymute/polymute/internal/session"
)

func TestRunShow_noSessionFile(t *testing.T) {
	defer configuration.Reset()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	configuration.Set(configuration.GlobalSessionKey, "show-test-missing")

	err := runShow(nil, []string{"m1"})

	require.Error(t, err)
}

func TestRunShow_foundSurvivor(t *testing.T) {
	defer configuration.Reset()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	configuration.Set(configuration.GlobalSessionKey, "show-test-found")

	store, err := session.Open("show-test-found")
	require.NoError(t, err)
	run := session.NewRun("run-1", []mutation.Result{
		{Mutation: mutation.Mutation{RefID: "m7", File: "a.py"}, Outcome: mutation.Survived},
	}, 10)
	require.NoError(t, store.Save(run))

	err = runShow(nil, []string{"@m7"})

	require.NoError(t, err)
}

func TestRunShow_invalidRefID(t *testing.T) {
	err := runShow(nil, []string{"bogus"})

	require.Error(t, err)
}

func TestDecodeRefID_usedByShow(t *testing.T) {
	refID, err := session.DecodeRefID("@m3")
	require.NoError(t, err)
	assert.Equal(t, "m3", refID)
}
