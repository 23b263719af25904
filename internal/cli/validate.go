package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcheck/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Tables      int                        `json:"tables"`
	Expressions int                        `json:"expressions"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs without type-checking them",
		Long: `Compile and validate the CUE specs of a directory without checking
any expression.

Reports every spec problem at once: missing expressions, tables without
columns, duplicate columns and malformed expression trees. Faster than check
for development feedback.

Exit codes:
  0 - Specs are valid
  1 - Specs compiled but have validation errors
  2 - Specs could not be loaded or compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Directory not found, no files, compile errors
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			if err := f.Error(loadErr.Code, loadErr.Error(), nil); err != nil {
				return err
			}
			return WrapExitError(ExitCommandError, "failed to load specs", loadErr)
		}
		if err := f.Error(ErrCodeGeneric, loadErrors[0].Error(), nil); err != nil {
			return err
		}
		return WrapExitError(ExitCommandError, "failed to load specs", loadErrors[0])
	}

	f.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := ValidationResult{
		Valid:       len(loadErrors) == 0,
		Tables:      loadResult.Spec.Catalog.Len(),
		Expressions: len(loadResult.Spec.Expressions),
	}
	for _, err := range loadErrors {
		var verr compiler.ValidationError
		if errors.As(err, &verr) {
			result.Errors = append(result.Errors, verr)
		}
	}

	if result.Valid {
		if f.JSON() {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "\u2713 Specs valid: %d table(s), %d expression(s)\n", result.Tables, result.Expressions)
		return nil
	}

	summary := fmt.Sprintf("%d validation error(s)", len(result.Errors))
	if f.JSON() {
		if err := f.Failure("E_VALIDATION_FAILED", summary, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintf(f.Writer, "\u2717 Validation failed with %d error(s):\n", len(result.Errors))
	for _, verr := range result.Errors {
		fmt.Fprintf(f.Writer, "  %s\n", verr.Error())
	}
	return NewExitError(ExitFailure, summary)
}
