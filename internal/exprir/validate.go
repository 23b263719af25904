package exprir

import "fmt"

// ValidationResult contains the structural problems of an expression tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every structural defect, each prefixed with its path.
	Problems []string
}

// Validate checks that a tree is well formed before it is typed:
//  1. No nil nodes (except Case.Else and Case.Operand)
//  2. Columns have a name, casts have a target type
//  3. Compare uses a known operator
//  4. AND/OR have at least two operands
//  5. CASE has at least one WHEN
//
// All problems are collected. Validate is a pure function.
func Validate(e Expr) ValidationResult {
	v := &validator{problems: []string{}}
	v.validate("", e)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(path, format string, args ...any) {
	if path == "" {
		path = "<root>"
	}
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validate(path string, e Expr) {
	if e == nil {
		v.addProblem(path, "missing expression")
		return
	}

	switch n := e.(type) {
	case *Column:
		if n.Name == "" {
			v.addProblem(path, "column name is required")
		}
	case *Literal:
		if n.Value == nil {
			v.addProblem(path, "literal has no value")
		}
	case *Compare:
		if !n.Op.Valid() {
			v.addProblem(path, "unknown comparison operator %q", n.Op)
		}
		v.validate(Join(path, "left"), n.Left)
		v.validate(Join(path, "right"), n.Right)
	case *And:
		v.validateList(path, "and", n.Operands)
	case *Or:
		v.validateList(path, "or", n.Operands)
	case *Not:
		v.validate(Join(path, "not"), n.Operand)
	case *IsNull:
		v.validate(Join(path, "isnull"), n.Operand)
	case *Cast:
		if n.To == "" {
			v.addProblem(path, "cast target type is required")
		}
		v.validate(Join(path, "cast"), n.Operand)
	case *Case:
		v.validateCase(path, n)
	default:
		v.addProblem(path, "unknown expression type %T", e)
	}
}

func (v *validator) validateList(path, name string, operands []Expr) {
	if len(operands) < 2 {
		v.addProblem(path, "%s needs at least two operands, got %d", name, len(operands))
	}
	for i, op := range operands {
		v.validate(Index(Join(path, name), i), op)
	}
}

func (v *validator) validateCase(path string, c *Case) {
	base := Join(path, "case")
	if len(c.Whens) == 0 {
		v.addProblem(base, "CASE needs at least one WHEN")
	}
	if c.Operand != nil {
		v.validate(Join(base, "operand"), c.Operand)
	}
	for i, w := range c.Whens {
		when := Index(Join(base, "when"), i)
		v.validate(Join(when, "cond"), w.Cond)
		v.validate(Join(when, "then"), w.Then)
	}
	if c.Else != nil {
		v.validate(Join(base, "else"), c.Else)
	}
}

// Join appends a path segment: Join("case", "else") == "case.else".
func Join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

// Index appends a list index: Index("case.when", 1) == "case.when[1]".
func Index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
