package store

import (
	"context"
	"database/sql"
	"fmt"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteRun inserts a run record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	return writeRun(ctx, s.db, run)
}

// WriteResult inserts a result record into the store.
// Uses ON CONFLICT DO NOTHING for idempotency - a second result for the same
// (run, expression) is silently ignored.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteResult(ctx context.Context, res Result) error {
	return writeResult(ctx, s.db, res)
}

// WriteRunWithResults writes a run and all of its results in one
// transaction.
func (s *Store) WriteRunWithResults(ctx context.Context, run Run, results []Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writeRun(ctx, tx, run); err != nil {
		return err
	}
	for _, res := range results {
		if err := writeResult(ctx, tx, res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func writeRun(ctx context.Context, db execer, run Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, specs_dir, spec_hash, tool_version, expr_count, failed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.SpecsDir,
		run.SpecHash,
		run.ToolVersion,
		run.ExprCount,
		run.FailedCount,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func writeResult(ctx context.Context, db execer, res Result) error {
	diagsJSON, err := marshalDiagnostics(res.Diagnostics)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO results
		(id, run_id, seq, expr_name, sql_text, inferred_type, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		res.ID,
		res.RunID,
		res.Seq,
		res.ExprName,
		res.SQL,
		res.InferredType,
		diagsJSON,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
