package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_requiresVersion(t *testing.T) {
	_, err := newRootCmd(context.Background(), "")
	require.Error(t, err)
}

func TestNewRootCmd_registersSubcommands(t *testing.T) {
	rc, err := newRootCmd(context.Background(), "dev")
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range rc.cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "run")
	assert.Contains(t, names, "show")
	assert.Contains(t, names, "status")
}

func TestNewRootCmd_persistentFlags(t *testing.T) {
	rc, err := newRootCmd(context.Background(), "dev")
	require.NoError(t, err)

	for _, name := range []string{"session", "json", "quiet"} {
		assert.NotNil(t, rc.cmd.PersistentFlags().Lookup(name), "expected persistent flag %q", name)
	}
}
