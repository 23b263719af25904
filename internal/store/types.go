package store

import "github.com/roach88/sqlcheck/internal/diag"

// Run is one recorded check of a specs directory.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	SpecsDir    string `json:"specs_dir"`
	SpecHash    string `json:"spec_hash"`
	ToolVersion string `json:"tool_version"`
	ExprCount   int    `json:"expr_count"`
	FailedCount int    `json:"failed_count"`
}

// Result is the recorded outcome of one expression of a run.
type Result struct {
	ID           string            `json:"id"`
	RunID        string            `json:"run_id"`
	Seq          int64             `json:"seq"`
	ExprName     string            `json:"expr_name"`
	SQL          string            `json:"sql"`
	InferredType string            `json:"inferred_type,omitempty"` // empty when the check failed
	Diagnostics  []diag.Diagnostic `json:"diagnostics"`
}

// OK reports whether the result has no diagnostics.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}
