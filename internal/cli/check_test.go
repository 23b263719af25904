package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/testutil"
)

func TestCheckCommand_Clean(t *testing.T) {
	out, err := execute(t, "check", specsDir("good"))
	require.NoError(t, err)

	assert.Contains(t, out, "\u2713 priority: INTEGER")
	assert.Contains(t, out, "\u2713 is_big: BOOLEAN")
	assert.Contains(t, out, "Check Summary: 2 passed, 0 failed, 2 total")
}

func TestCheckCommand_Mismatch(t *testing.T) {
	out, err := execute(t, "check", specsDir("mixed"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "\u2713 priority: INTEGER")
	assert.Contains(t, out, "\u2717 label")
	assert.Contains(t, out, "[E001]")
	assert.Contains(t, out, "among [NUMERIC, STRING]")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := execute(t, "check", specsDir("mixed"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID   string `json:"run_id"`
			Failed  int    `json:"failed"`
			Results []struct {
				Name string `json:"name"`
			} `json:"results"`
		} `json:"data"`
		Error *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_CHECK_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Len(t, resp.Data.Results, 2)
}

func TestCheckCommand_InvalidSpecs(t *testing.T) {
	out, err := execute(t, "check", specsDir("invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
}

func TestCheckCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "check", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckCommand_UnknownTableWithoutCatalog(t *testing.T) {
	out, err := execute(t, "check", specsDir("external"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[E201]")
}

func TestCheckCommand_CatalogDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), `CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := execute(t, "check", specsDir("external"), "--catalog-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\u2713 customer_label: VARCHAR")
}

func TestCheckCommand_Record(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "check", specsDir("good"), "--record", dbPath)
	require.NoError(t, err)
	_, err = execute(t, "check", specsDir("mixed"), "--record", dbPath)
	require.Error(t, err)

	runs := recordedRuns(t, dbPath)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[0].Seq, runs[1].Seq, "newest run first, with a later seq")
	assert.Equal(t, 1, runs[0].FailedCount)
	assert.Equal(t, 0, runs[1].FailedCount)
	assert.Equal(t, 2, runs[0].ExprCount)
}

func TestCheckCommand_FixedRunID(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCheckCommand(rootOpts)
	opts := &CheckOptions{
		RootOptions: rootOpts,
		IDGenerator: testutil.NewFixedIDGenerator("run-fixed"),
	}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, runCheck(opts, specsDir("good"), cmd))
	assert.Contains(t, out.String(), "(run run-fixed)")
}

func TestCheckCommand_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", specsDir("good"), "--format", "json"})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, diag.CodeRuntime, resp.Error.Code)
	assert.Equal(t, "CANCELLED", resp.Error.Details["reason"])
}
