package exprir

import "github.com/roach88/sqlcheck/internal/ir"

// Expr is a scalar SQL expression.
type Expr interface {
	exprNode()
}

// Column references a column, optionally qualified by table.
type Column struct {
	Table string // empty = resolve against every table in the catalog
	Name  string
}

func (*Column) exprNode() {}

// Literal is a constant. Type overrides the natural literal type when set,
// e.g. {Value: "2024-01-31", Type: "DATE"}.
type Literal struct {
	Value ir.IRValue
	Type  ir.RawType
}

func (*Literal) exprNode() {}

// Null returns a NULL literal.
func Null() *Literal {
	return &Literal{Value: ir.IRNull{}}
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Valid reports whether op is a known operator.
func (op CompareOp) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Compare is a binary comparison.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (*Compare) exprNode() {}

// And is a conjunction of at least two operands.
type And struct {
	Operands []Expr
}

func (*And) exprNode() {}

// Or is a disjunction of at least two operands.
type Or struct {
	Operands []Expr
}

func (*Or) exprNode() {}

// Not negates its operand.
type Not struct {
	Operand Expr
}

func (*Not) exprNode() {}

// IsNull is "x IS NULL", or "x IS NOT NULL" when Negated.
type IsNull struct {
	Operand Expr
	Negated bool
}

func (*IsNull) exprNode() {}

// Cast converts its operand to a declared type.
type Cast struct {
	Operand Expr
	To      ir.RawType
}

func (*Cast) exprNode() {}

// When is one WHEN/THEN branch. For a simple CASE, Cond is the value the
// case operand is compared to.
type When struct {
	Cond Expr
	Then Expr
}

// Case is a CASE expression.
//
// Searched form: Operand is nil and every When.Cond is a boolean condition.
// Simple form: Operand is set and every When.Cond is a value.
// Else may be nil, meaning ELSE NULL.
type Case struct {
	Operand Expr
	Whens   []When
	Else    Expr
}

func (*Case) exprNode() {}

// Operands flattens the node into binding order:
//
//	cond1, then1, cond2, then2, ..., else
//
// The result always has an odd length of at least 3 when Whens is not empty.
func (c *Case) Operands() []Expr {
	ops := make([]Expr, 0, 2*len(c.Whens)+1)
	for _, w := range c.Whens {
		cond := w.Cond
		if c.Operand != nil {
			cond = &Compare{Op: OpEq, Left: c.Operand, Right: w.Cond}
		}
		ops = append(ops, cond, w.Then)
	}
	return append(ops, c.ElseOrNull())
}

// ElseOrNull returns Else, or a NULL literal when there is no ELSE.
func (c *Case) ElseOrNull() Expr {
	if c.Else == nil {
		return Null()
	}
	return c.Else
}
