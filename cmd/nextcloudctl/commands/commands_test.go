package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findSubcommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("subcommand %q not registered", name)
	return nil
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := Root()
	for _, name := range []string{"install", "update", "version", "completion"} {
		findSubcommand(t, root, name)
	}
}

func TestInstallFlags(t *testing.T) {
	cmd := Install()

	path := cmd.Flags().Lookup("path")
	require.NotNil(t, path)
	assert.Equal(t, "p", path.Shorthand)

	start := cmd.Flags().Lookup("start")
	require.NotNil(t, start)
	assert.Equal(t, "false", start.DefValue)
}

func TestUpdateFlags(t *testing.T) {
	cmd := Update()

	path := cmd.Flags().Lookup("path")
	require.NotNil(t, path)
	assert.Equal(t, "p", path.Shorthand)

	for _, name := range []string{"target", "latest", "aux"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestVersionCommandRuns(t *testing.T) {
	SetVersionInfo("1.2.3", "abcdef", "2026-08-23")
	cmd := Version()
	assert.NotPanics(t, func() { cmd.Run(cmd, nil) })
}
