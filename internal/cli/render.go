package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlcheck/internal/exprsql"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Expr   string // render one expression only
	Params bool   // use ? placeholders and list the bound values
	Output string // write text output to a file instead of stdout
}

// RenderedExpr is one rendered expression.
type RenderedExpr struct {
	Name   string `json:"name"`
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <specs-dir>",
		Short: "Print the SQL text of spec expressions",
		Long: `Render the expressions of a specs directory as SQL.

Literals are inlined unless --params is set, in which case they become ?
placeholders and the bound values are listed after each statement.

Examples:
  sqlcheck render ./specs
  sqlcheck render ./specs --expr priority
  sqlcheck render ./specs --params -o exprs.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Expr, "expr", "", "render only this expression")
	cmd.Flags().BoolVar(&opts.Params, "params", false, "render literals as ? placeholders")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write text output to file")

	return cmd
}

func runRender(opts *RenderOptions, specsDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	loaded, err := loadSpecsOrExit(f, specsDir)
	if err != nil {
		return err
	}

	renderer := exprsql.NewRenderer()
	var rendered []RenderedExpr
	for _, x := range loaded.Spec.Expressions {
		if opts.Expr != "" && x.Name != opts.Expr {
			continue
		}

		r := RenderedExpr{Name: x.Name}
		if opts.Params {
			r.SQL, r.Params, err = renderer.Render(x.Expr)
		} else {
			r.SQL, err = exprsql.Unparse(x.Expr)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to render %s", x.Name), err)
		}
		rendered = append(rendered, r)
	}

	if opts.Expr != "" && len(rendered) == 0 {
		msg := fmt.Sprintf("expression %q not found in %s", opts.Expr, specsDir)
		if err := f.Error(ErrCodeNotFound, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}

	if f.JSON() {
		return f.Success(rendered)
	}

	var sb strings.Builder
	for _, r := range rendered {
		if opts.Expr != "" {
			sb.WriteString(r.SQL + "\n")
		} else {
			fmt.Fprintf(&sb, "-- %s\n%s;\n", r.Name, r.SQL)
		}
		if len(r.Params) > 0 {
			fmt.Fprintf(&sb, "-- params: %v\n", r.Params)
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sb.String()), 0o644); err != nil {
			if ferr := f.Error(ErrCodeWriteFailed, err.Error(), nil); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		f.VerboseLog("Wrote %d expression(s) to %s", len(rendered), opts.Output)
		return nil
	}

	fmt.Fprint(f.Writer, sb.String())
	return nil
}
