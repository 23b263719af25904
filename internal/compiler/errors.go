package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a spec that loaded but cannot be compiled. Field is the
// dotted path inside the spec (types.money, table.orders.id,
// expr.priority.case.when[0].cond) or "cue" for evaluation errors.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if !e.Pos.IsValid() {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
}

// Section returns the top-level spec section the error belongs to: types,
// table, expr, or cue.
func (e *CompileError) Section() string {
	section, _, _ := strings.Cut(e.Field, ".")
	return section
}

// formatCUEError turns a CUE error list into a CompileError positioned at
// the first error that carries a source position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	for _, e := range errors.Errors(err) {
		if pos := errors.Positions(e); len(pos) > 0 {
			return &CompileError{Field: "cue", Message: e.Error(), Pos: pos[0]}
		}
	}
	return err
}
