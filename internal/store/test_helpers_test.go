package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a test run with minimal required fields.
func createTestRun(id string, seq int64) Run {
	return Run{
		ID:          id,
		Seq:         seq,
		SpecsDir:    "specs",
		SpecHash:    "test-hash",
		ToolVersion: "0.1.0",
	}
}

// createTestResult creates a passing INTEGER result with a content-addressed ID.
func createTestResult(t *testing.T, runID, exprName string, seq int64) Result {
	t.Helper()
	id, err := ir.ResultID(runID, exprName, seq)
	if err != nil {
		t.Fatalf("ResultID() failed: %v", err)
	}
	return Result{
		ID:           id,
		RunID:        runID,
		Seq:          seq,
		ExprName:     exprName,
		SQL:          "qty > ?",
		InferredType: "INTEGER",
		Diagnostics:  []diag.Diagnostic{},
	}
}

func mustWriteRun(t *testing.T, s *Store, run Run) {
	t.Helper()
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
}

func mustWriteResult(t *testing.T, s *Store, res Result) {
	t.Helper()
	if err := s.WriteResult(context.Background(), res); err != nil {
		t.Fatalf("WriteResult() failed: %v", err)
	}
}
