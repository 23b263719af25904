package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcheck/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run the YAML conformance scenarios of a directory.

Each scenario compiles its specs, checks every expression and compares the
outcome with its expectations: an inferred type, or a diagnostic code with
optional path, branch families and message fragment.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sqlcheck test ./scenarios
  sqlcheck test ./scenarios --filter "case-*"
  sqlcheck test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := harness.Discover(scenariosDir, opts.Filter)
	if err != nil {
		if ferr := f.Error(ErrCodeNotFound, err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(paths) == 0 {
		if f.JSON() {
			return f.Success(&harness.Summary{})
		}
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	f.VerboseLog("Running %d scenario(s) from %s", len(paths), scenariosDir)
	summary := harness.RunAll(ctx, paths)

	msg := fmt.Sprintf("%d scenario(s) failed", summary.Failed)
	if f.JSON() {
		if summary.OK() {
			return f.Success(summary)
		}
		if err := f.Failure("E_TEST_FAILED", msg, summary); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := f.Writer
	for _, failure := range summary.Failures {
		name := failure.Scenario
		if name == "" {
			name = failure.Path
		}
		fmt.Fprintf(w, "\u2717 %s\n", name)
		for _, e := range failure.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)

	if !summary.OK() {
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(w, "\u2713 All scenarios passed")
	return nil
}
