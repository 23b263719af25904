package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sqlcheck/internal/compiler"
	"github.com/roach88/sqlcheck/internal/engine"
	"github.com/roach88/sqlcheck/internal/testutil"
	"github.com/roach88/sqlcheck/internal/typecheck"
)

// ErrInvalidSpecs is returned when a scenario's specs compile but fail
// validation.
var ErrInvalidSpecs = errors.New("invalid specs")

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load and compile the scenario's specs together
//  2. Validate the compiled spec
//  3. Check every expression with the engine (deterministic run ID and clock,
//     no store)
//  4. Evaluate the expectations against the report
//
// The error is non-nil only when the scenario could not be executed. Failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	spec, err := compiler.LoadFiles(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	if verrs := compiler.Validate(spec); len(verrs) > 0 {
		joined := make([]error, len(verrs))
		for i, v := range verrs {
			joined[i] = v
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpecs, errors.Join(joined...))
	}

	classifier, err := spec.Classifier()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	checker := typecheck.New(spec.Catalog, classifier, typecheck.WithLogger(logger))
	eng := engine.New(checker,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.RunID)),
		engine.WithToolVersion("harness"),
		engine.WithLogger(logger),
	)

	report, err := eng.Run(ctx, engine.Batch{
		SpecsDir:    scenario.Name,
		Expressions: spec.Expressions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %q: %w", scenario.Name, err)
	}

	result := NewResult(report)
	for _, msg := range EvaluateExpectations(report, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}
