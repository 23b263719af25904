package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/store"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func specsDir(name string) string {
	return filepath.Join("testdata", name)
}

// recordedRuns returns the runs of the store at path, newest first.
func recordedRuns(t *testing.T, path string) []store.Run {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ReadRuns(context.Background(), 0)
	require.NoError(t, err)
	return runs
}
