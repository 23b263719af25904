// Package diag is the diagnostics channel of the validator.
//
// Every failure the validator can report is turned into a Diagnostic with a
// stable code. Codes are grouped: E0xx general (generic, parse, runtime),
// E2xx static typing.
package diag

import (
	"errors"
	"fmt"
)

// Diagnostic codes.
const (
	CodeGeneric = "E001" // generic/internal failure, including CASE type mismatch
	CodeParse   = "E010" // expression tree is malformed
	CodeRuntime = "E020" // reserved for evaluation failures

	CodeUnknownTable        = "E201"
	CodeUnknownColumn       = "E202"
	CodeAmbiguousColumn     = "E203"
	CodeOperandNotBoolean   = "E204"
	CodeIncomparable        = "E205"
	CodeConditionNotBoolean = "E206"
)

// Coded is implemented by errors that carry their own diagnostic code.
type Coded interface {
	Code() string
}

// Diagnostic is a single query-level finding.
type Diagnostic struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	prefix := fmt.Sprintf("[%s]", d.Code)
	if d.Line > 0 {
		prefix += fmt.Sprintf(" line %d:", d.Line)
	}
	if d.Path == "" {
		return fmt.Sprintf("%s %s", prefix, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", prefix, d.Path, d.Message)
}

// New creates a diagnostic.
func New(code, path, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// FromError reports err at path. The code is taken from the first error in
// the chain implementing Coded; anything else is CodeGeneric.
func FromError(path string, err error) Diagnostic {
	code := CodeGeneric
	var coded Coded
	if errors.As(err, &coded) {
		code = coded.Code()
	}
	return Diagnostic{Code: code, Path: path, Message: err.Error()}
}

// WithLine returns copies of diags with Line set where it is not already.
func WithLine(diags []Diagnostic, line int) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		if d.Line == 0 {
			d.Line = line
		}
		out[i] = d
	}
	return out
}
