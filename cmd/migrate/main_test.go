package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasDirections(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"up", "down"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("migrations-dir"))
}

func TestRootCommandRejectsExtraArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"up", "extra"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	assert.Error(t, root.Execute())
}

func TestRunMigrationsNeedsDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")

	err := runMigrations(t.Context(), "up", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
