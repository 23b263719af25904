package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	out, err := execute(t, "validate", specsDir("good"))
	require.NoError(t, err)
	assert.Equal(t, "\u2713 Specs valid: 1 table(s), 2 expression(s)\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	out, err := execute(t, "validate", specsDir("invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "Validation failed with 2 error(s)")
	assert.Contains(t, out, "[E101]")
	assert.Contains(t, out, "[E105]")
}

func TestValidateCommand_InvalidJSON(t *testing.T) {
	out, err := execute(t, "validate", specsDir("invalid"), "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_VALIDATION_FAILED", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Errors, 2)
}

func TestValidateCommand_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		code string
	}{
		{"missing", filepath.Join(t.TempDir(), "missing"), ErrCodeNotFound},
		{"empty", t.TempDir(), ErrCodeNoFiles},
		{"cycle", specsDir("cycle"), ErrCodeInvalidTypes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "validate", tt.dir)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}
