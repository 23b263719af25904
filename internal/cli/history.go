package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // show one run in detail
	Limit    int    // number of runs to list
	DiffBase string // compare RunID against this run
}

// RunDetail is one run with its results.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Results []store.Result `json:"results"`
}

// RunDiff lists what changed between two runs.
type RunDiff struct {
	Base    string               `json:"base"`
	Head    string               `json:"head"`
	Changes []store.ResultChange `json:"changes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded check runs",
		Long: `Inspect the runs recorded by check --record.

Without --run, lists the most recent runs, newest first. With --run, shows
the results of that run. With --run and --diff, shows the expressions whose
outcome changed from the --diff run to the --run run.

Exit codes:
  0 - Success
  2 - Command error (database not found, unknown run, etc.)

Examples:
  sqlcheck history --db ./runs.db
  sqlcheck history --db ./runs.db --limit 5
  sqlcheck history --db ./runs.db --run <id>
  sqlcheck history --db ./runs.db --run <id> --diff <older-id>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the results of one run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.DiffBase, "diff", "", "compare --run against this earlier run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	if opts.DiffBase != "" && opts.RunID == "" {
		return NewExitError(ExitCommandError, "--diff requires --run")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	switch {
	case opts.DiffBase != "":
		return historyDiff(ctx, f, st, opts.DiffBase, opts.RunID)
	case opts.RunID != "":
		return historyRun(ctx, f, st, opts.RunID)
	default:
		return historyList(ctx, f, st, opts.Limit)
	}
}

func historyList(ctx context.Context, f *OutputFormatter, st *store.Store, limit int) error {
	runs, err := st.ReadRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if f.JSON() {
		if runs == nil {
			runs = []store.Run{}
		}
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "%6d  %s  %d/%d failed  %s\n", r.Seq, r.ID, r.FailedCount, r.ExprCount, r.SpecsDir)
	}
	return nil
}

// requireRun fails with a command error when id is not a recorded run.
func requireRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
	}
	if err != nil {
		return store.Run{}, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	return run, nil
}

func historyRun(ctx context.Context, f *OutputFormatter, st *store.Store, id string) error {
	run, err := requireRun(ctx, st, id)
	if err != nil {
		return err
	}
	results, err := st.ReadResults(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read results", err)
	}

	if f.JSON() {
		if results == nil {
			results = []store.Result{}
		}
		return f.Success(RunDetail{Run: run, Results: results})
	}

	w := f.Writer
	fmt.Fprintf(w, "Run %s (seq %d, %s, tool %s)\n", run.ID, run.Seq, run.SpecsDir, run.ToolVersion)
	fmt.Fprintf(w, "Spec hash: %s\n\n", run.SpecHash)
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(w, "\u2713 %s: %s\n", r.ExprName, r.InferredType)
			continue
		}
		fmt.Fprintf(w, "\u2717 %s\n", r.ExprName)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "    %s\n", d.Error())
		}
	}
	return nil
}

func historyDiff(ctx context.Context, f *OutputFormatter, st *store.Store, baseID, headID string) error {
	for _, id := range []string{baseID, headID} {
		if _, err := requireRun(ctx, st, id); err != nil {
			return err
		}
	}

	changes, err := st.DiffRuns(ctx, baseID, headID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to diff runs", err)
	}

	if f.JSON() {
		return f.Success(RunDiff{Base: baseID, Head: headID, Changes: changes})
	}

	w := f.Writer
	if len(changes) == 0 {
		fmt.Fprintf(w, "No changes between %s and %s.\n", baseID, headID)
		return nil
	}
	for _, c := range changes {
		fmt.Fprintf(w, "%-12s %s%s\n", c.Kind, c.ExprName, describeChange(c))
	}
	return nil
}

func describeChange(c store.ResultChange) string {
	switch c.Kind {
	case store.ChangeType:
		return fmt.Sprintf(": %s -> %s", c.Base.InferredType, c.Head.InferredType)
	case store.ChangeBroken:
		if len(c.Head.Diagnostics) > 0 {
			return ": " + c.Head.Diagnostics[0].Error()
		}
	}
	return ""
}
