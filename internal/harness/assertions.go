package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/engine"
	"github.com/roach88/sqlcheck/internal/ir"
	"github.com/roach88/sqlcheck/internal/typemap"
)

// AssertionError is a failed expectation.
type AssertionError struct {
	Expr    string
	Message string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect[%s]: %s", e.Expr, e.Message)
}

func fail(expr, format string, args ...any) error {
	return &AssertionError{Expr: expr, Message: fmt.Sprintf(format, args...)}
}

// assertType checks that r checked cleanly to the expected type. The
// expected name may be any known spelling, so "int4" matches INTEGER.
func assertType(r engine.ExprResult, want string) error {
	if !r.OK() {
		return fail(r.Name, "expected type %s, got diagnostics: %s", want, formatDiagnostics(r.Diagnostics))
	}
	if got, norm := r.Type.Name, expectedTypeName(want); got != norm {
		return fail(r.Name, "expected type %s, got %s", norm, got)
	}
	return nil
}

func expectedTypeName(want string) string {
	raw := ir.RawType(want)
	if c := typemap.Default(); c.Known(raw) {
		return c.Classify(raw).Name
	}
	return typemap.Normalize(raw)
}

// assertError checks that r has a diagnostic matching want.
func assertError(r engine.ExprResult, want *ExpectedError) error {
	if r.OK() {
		return fail(r.Name, "expected error %s, got type %s", want.Code, r.Type)
	}
	for _, d := range r.Diagnostics {
		if diagnosticMatches(d, want) {
			return nil
		}
	}
	return fail(r.Name, "no diagnostic matches %s; got: %s", describeExpected(want), formatDiagnostics(r.Diagnostics))
}

func diagnosticMatches(d diag.Diagnostic, want *ExpectedError) bool {
	if d.Code != want.Code {
		return false
	}
	if want.Path != "" && d.Path != want.Path {
		return false
	}
	if len(want.Families) > 0 && !strings.Contains(d.Message, familyList(want.Families)) {
		return false
	}
	if want.Contains != "" && !strings.Contains(d.Message, want.Contains) {
		return false
	}
	return true
}

// familyList renders families the way mismatch messages list them.
func familyList(families []string) string {
	upper := make([]string, len(families))
	for i, f := range families {
		upper[i] = strings.ToUpper(f)
	}
	return "[" + strings.Join(upper, ", ") + "]"
}

func describeExpected(want *ExpectedError) string {
	parts := []string{want.Code}
	if want.Path != "" {
		parts = append(parts, "at "+want.Path)
	}
	if len(want.Families) > 0 {
		parts = append(parts, "among "+familyList(want.Families))
	}
	if want.Contains != "" {
		parts = append(parts, fmt.Sprintf("containing %q", want.Contains))
	}
	return strings.Join(parts, " ")
}

func formatDiagnostics(diags []diag.Diagnostic) string {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "; ")
}

// EvaluateExpectations checks every expectation against report and returns
// one message per failure. Expressions without an expectation are not
// checked.
func EvaluateExpectations(report *engine.Report, expects []Expectation) []string {
	byName := make(map[string]engine.ExprResult, len(report.Results))
	for _, r := range report.Results {
		byName[r.Name] = r
	}

	var errors []string
	for _, exp := range expects {
		r, ok := byName[exp.Expr]
		if !ok {
			errors = append(errors, fail(exp.Expr, "expression not defined by the specs").Error())
			continue
		}

		var err error
		if exp.Error != nil {
			err = assertError(r, exp.Error)
		} else {
			err = assertType(r, exp.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
