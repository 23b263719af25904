package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlcheck/internal/exprir"
)

// Validation error codes (E100-E199)
const (
	ErrNoExpressions     = "E101" // spec defines no expressions
	ErrTableNoColumns    = "E102" // table must have columns
	ErrDuplicateColumn   = "E105" // duplicate column name (case-insensitive)
	ErrMalformedExprTree = "E106" // expression tree fails structural validation
)

// ValidationError represents a spec validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled spec.
// Returns all errors found (does not fail-fast).
func Validate(spec *Spec) []ValidationError {
	var errs []ValidationError

	// E101: at least one expression
	if len(spec.Expressions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "expr",
			Message: "spec defines no expressions",
			Code:    ErrNoExpressions,
		})
	}

	if spec.Catalog != nil {
		for _, table := range spec.Catalog.Tables() {
			// E102: table must have columns
			if len(table.Columns) == 0 {
				errs = append(errs, ValidationError{
					Field:   "table." + table.Name,
					Message: fmt.Sprintf("table %q has no columns", table.Name),
					Code:    ErrTableNoColumns,
				})
			}

			// E105: identifiers are case-insensitive
			seen := make(map[string]string, len(table.Columns))
			for _, col := range table.Columns {
				key := strings.ToLower(col.Name)
				if first, dup := seen[key]; dup {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("table.%s.%s", table.Name, col.Name),
						Message: fmt.Sprintf("duplicate column %q (already declared as %q)", col.Name, first),
						Code:    ErrDuplicateColumn,
					})
					continue
				}
				seen[key] = col.Name
			}
		}
	}

	// E106: structural problems, one error per problem
	for _, e := range spec.Expressions {
		result := exprir.Validate(e.Expr)
		for _, problem := range result.Problems {
			errs = append(errs, ValidationError{
				Field:   "expr." + e.Name,
				Message: problem,
				Code:    ErrMalformedExprTree,
				Line:    e.Line,
			})
		}
	}

	return errs
}
