package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcheck/internal/catalog"
	"github.com/roach88/sqlcheck/internal/engine"
	"github.com/roach88/sqlcheck/internal/store"
	"github.com/roach88/sqlcheck/internal/typecheck"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	CatalogDB string // SQLite database whose tables join the spec catalog
	Record    string // store database to record the run in
	Workers   int

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <specs-dir>",
		Short: "Type-check the expressions of a specs directory",
		Long: `Type-check every expression declared in a specs directory.

Each expression is checked against the tables of the specs, plus the tables
of --catalog-db when given. CASE expressions must have THEN and ELSE
branches of one identical type. With --record the run and its results are
stored for the history command.

Exit codes:
  0 - Every expression checked cleanly
  1 - One or more expressions have diagnostics
  2 - Command error (invalid specs, database not found, etc.)

Examples:
  sqlcheck check ./specs
  sqlcheck check ./specs --catalog-db ./app.db
  sqlcheck check ./specs --record ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CatalogDB, "catalog-db", "", "SQLite database to read extra tables from")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the run in this store database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent checks (default GOMAXPROCS)")

	return cmd
}

func runCheck(opts *CheckOptions, specsDir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.logger()

	loaded, err := loadSpecsOrExit(f, specsDir)
	if err != nil {
		return err
	}
	spec := loaded.Spec

	if opts.CatalogDB != "" {
		extra, err := catalog.LoadSQLite(ctx, opts.CatalogDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog database", err)
		}
		if err := spec.Catalog.Merge(extra); err != nil {
			return WrapExitError(ExitCommandError, "failed to merge catalog database", err)
		}
		f.VerboseLog("Added %d table(s) from %s", extra.Len(), opts.CatalogDB)
	}

	classifier, err := spec.Classifier()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid type aliases", err)
	}

	engineOpts := []engine.Option{
		engine.WithWorkers(opts.Workers),
		engine.WithToolVersion(Version),
		engine.WithLogger(logger),
	}
	if opts.IDGenerator != nil {
		engineOpts = append(engineOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	if opts.Record != "" {
		st, err := store.Open(opts.Record)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		clock, err := engine.ResumeClock(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read database", err)
		}
		engineOpts = append(engineOpts, engine.WithStore(st), engine.WithClock(clock))
	}

	checker := typecheck.New(spec.Catalog, classifier, typecheck.WithLogger(logger))
	report, err := engine.New(checker, engineOpts...).Run(ctx, engine.Batch{
		SpecsDir:    specsDir,
		Expressions: spec.Expressions,
	})
	if err != nil {
		return runFailed(f, err)
	}

	return outputCheck(f, report)
}

// runFailed reports a failure of the run itself under the runtime
// diagnostic code.
func runFailed(f *OutputFormatter, err error) error {
	var runErr *engine.RunError
	if errors.As(err, &runErr) {
		details := map[string]string{"reason": string(runErr.Code)}
		if runErr.RunID != "" {
			details["run_id"] = runErr.RunID
		}
		if ferr := f.Error(runErr.DiagnosticCode(), runErr.Error(), details); ferr != nil {
			return ferr
		}
	}
	return WrapExitError(ExitCommandError, "check run failed", err)
}

func outputCheck(f *OutputFormatter, report *engine.Report) error {
	summary := fmt.Sprintf("%d of %d expression(s) failed", report.Failed, len(report.Results))

	if f.JSON() {
		if report.OK() {
			return f.Success(report)
		}
		if err := f.Failure("E_CHECK_FAILED", summary, report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	w := f.Writer
	for _, r := range report.Results {
		if r.OK() {
			fmt.Fprintf(w, "\u2713 %s: %s\n", r.Name, r.Type)
			continue
		}
		fmt.Fprintf(w, "\u2717 %s\n", r.Name)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "    %s\n", d.Error())
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total (run %s)\n",
		len(report.Results)-report.Failed, report.Failed, len(report.Results), report.RunID)

	if !report.OK() {
		return NewExitError(ExitFailure, summary)
	}
	return nil
}
