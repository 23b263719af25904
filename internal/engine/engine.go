package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sqlcheck/internal/compiler"
	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/exprsql"
	"github.com/roach88/sqlcheck/internal/ir"
	"github.com/roach88/sqlcheck/internal/store"
	"github.com/roach88/sqlcheck/internal/typecheck"
)

// Batch is the set of expressions checked by one run.
type Batch struct {
	SpecsDir    string
	Expressions []compiler.Expression
}

// ExprResult is the outcome of one expression.
type ExprResult struct {
	Name        string            `json:"name"`
	Line        int               `json:"line,omitempty"`
	SQL         string            `json:"sql"`
	Type        ir.Type           `json:"type"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// OK reports whether the expression checked cleanly.
func (r ExprResult) OK() bool {
	return len(r.Diagnostics) == 0
}

// Report is the outcome of a run. Results are in batch order.
type Report struct {
	RunID    string       `json:"run_id"`
	Seq      int64        `json:"seq"`
	SpecHash string       `json:"spec_hash"`
	Results  []ExprResult `json:"results"`
	Failed   int          `json:"failed"`
}

// OK reports whether every expression checked cleanly.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore records runs in s. Without a store, runs are only reported.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock sets the sequencer. Defaults to a fresh Clock.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the run ID generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithWorkers bounds the number of concurrent checks. Values below 1 mean
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithToolVersion sets the version recorded with each run.
func WithToolVersion(v string) Option {
	return func(e *Engine) {
		e.toolVersion = v
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine checks batches of expressions.
type Engine struct {
	checker     *typecheck.Checker
	store       *store.Store
	clock       Sequencer
	ids         IDGenerator
	workers     int
	toolVersion string
	logger      *slog.Logger
}

// New creates an engine around checker.
func New(checker *typecheck.Checker, opts ...Option) *Engine {
	e := &Engine{
		checker:     checker,
		clock:       NewClock(),
		ids:         UUIDv7Generator{},
		toolVersion: "dev",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Run checks every expression of b and records the run if the engine has a
// store. Findings about expressions are part of the report, not the error;
// the error is non-nil only when the run itself failed.
func (e *Engine) Run(ctx context.Context, b Batch) (*Report, error) {
	runID := e.ids.Generate()
	logger := e.logger.With("run", runID)
	logger.Info("run started", "specs", b.SpecsDir, "expressions", len(b.Expressions), "workers", e.workers)

	results, err := e.checkAll(ctx, b.Expressions)
	if err != nil {
		return nil, e.wrap(runID, err)
	}

	sqlByName := make(map[string]string, len(results))
	for _, r := range results {
		sqlByName[r.Name] = r.SQL
	}
	specHash, err := ir.SpecHash(sqlByName)
	if err != nil {
		return nil, &RunError{Code: ErrCodeHashFailed, Message: "fingerprint specs", RunID: runID, Err: err}
	}

	report := &Report{
		RunID:    runID,
		Seq:      e.clock.Next(),
		SpecHash: specHash,
		Results:  results,
	}
	for _, r := range results {
		if !r.OK() {
			report.Failed++
		}
	}

	if e.store != nil {
		if err := e.record(ctx, b, report); err != nil {
			return nil, e.wrap(runID, err)
		}
	}

	logger.Info("run finished", "seq", report.Seq, "failed", report.Failed)
	return report, nil
}

// checkAll fans the checks out over the worker pool. Each worker writes
// only its own slot of results.
func (e *Engine) checkAll(ctx context.Context, exprs []compiler.Expression) ([]ExprResult, error) {
	results := make([]ExprResult, len(exprs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, x := range exprs {
		i, x := i, x
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.checkOne(x)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancelled context may leave the tail of the batch unscheduled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) checkOne(x compiler.Expression) ExprResult {
	res := e.checker.Check(x.Expr)
	out := ExprResult{
		Name:        x.Name,
		Line:        x.Line,
		Type:        res.Type,
		Diagnostics: diag.WithLine(res.Diagnostics, x.Line),
	}
	sql, err := exprsql.Unparse(x.Expr)
	if err != nil {
		// Unrenderable trees already carry parse diagnostics.
		e.logger.Debug("expression not rendered", "expr", x.Name, "error", err)
	}
	out.SQL = sql
	return out
}

// record stamps results with seqs in batch order and writes the run in one
// transaction.
func (e *Engine) record(ctx context.Context, b Batch, report *Report) error {
	run := store.Run{
		ID:          report.RunID,
		Seq:         report.Seq,
		SpecsDir:    b.SpecsDir,
		SpecHash:    report.SpecHash,
		ToolVersion: e.toolVersion,
		ExprCount:   len(report.Results),
		FailedCount: report.Failed,
	}

	rows := make([]store.Result, 0, len(report.Results))
	for _, r := range report.Results {
		seq := e.clock.Next()
		id, err := ir.ResultID(report.RunID, r.Name, seq)
		if err != nil {
			return err
		}
		row := store.Result{
			ID:          id,
			RunID:       report.RunID,
			Seq:         seq,
			ExprName:    r.Name,
			SQL:         r.SQL,
			Diagnostics: r.Diagnostics,
		}
		if !r.Type.IsZero() {
			row.InferredType = r.Type.Name
		}
		rows = append(rows, row)
	}

	if err := e.store.WriteRunWithResults(ctx, run, rows); err != nil {
		return &RunError{Code: ErrCodeRecordFailed, Message: "record run", RunID: report.RunID, Err: err}
	}
	return nil
}

func (e *Engine) wrap(runID string, err error) error {
	var re *RunError
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &RunError{Code: ErrCodeCancelled, Message: "run interrupted", RunID: runID, Err: err}
	}
	return fmt.Errorf("run %s: %w", runID, err)
}
