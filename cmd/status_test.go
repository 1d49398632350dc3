package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymute/polymute/internal/configuration"
	"github.com/polymute/polymute/internal/mutation"
	"github.com/polymute/polymute/internal/session"
)

func TestRunStatus_noSessionFile(t *testing.T) {
	defer configuration.Reset()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	configuration.Set(configuration.GlobalSessionKey, "status-test-missing")

	err := runStatus(nil, nil)

	require.Error(t, err)
}

func TestRunStatus_summarizesLastRun(t *testing.T) {
	defer configuration.Reset()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	configuration.Set(configuration.GlobalSessionKey, "status-test-ok")
	configuration.Set(configuration.GlobalJSONKey, false)

	store, err := session.Open("status-test-ok")
	require.NoError(t, err)
	run := session.NewRun("run-1", []mutation.Result{
		{Mutation: mutation.Mutation{RefID: "m1"}, Outcome: mutation.Killed},
	}, 10)
	require.NoError(t, store.Save(run))

	err = runStatus(nil, nil)

	require.NoError(t, err)
}
