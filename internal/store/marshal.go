package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/ir"
)

// marshalDiagnostics converts diagnostics to canonical JSON TEXT for storage.
// Empty path and line are omitted, matching the JSON tags of
// diag.Diagnostic.
func marshalDiagnostics(diags []diag.Diagnostic) (string, error) {
	list := make([]any, 0, len(diags))
	for _, d := range diags {
		m := map[string]any{
			"code":    d.Code,
			"message": d.Message,
		}
		if d.Path != "" {
			m["path"] = d.Path
		}
		if d.Line > 0 {
			m["line"] = d.Line
		}
		list = append(list, m)
	}

	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal diagnostics: %w", err)
	}
	return string(data), nil
}

// unmarshalDiagnostics parses diagnostics JSON TEXT.
// Returns an empty slice (not nil) for no diagnostics.
func unmarshalDiagnostics(data string) ([]diag.Diagnostic, error) {
	if data == "" || data == "[]" {
		return []diag.Diagnostic{}, nil
	}
	var diags []diag.Diagnostic
	if err := json.Unmarshal([]byte(data), &diags); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return diags, nil
}
