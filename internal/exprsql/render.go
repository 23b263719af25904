// Package exprsql renders expression trees as SQL.
package exprsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sqlcheck/internal/caseop"
	"github.com/roach88/sqlcheck/internal/exprir"
	"github.com/roach88/sqlcheck/internal/ir"
)

// Renderer renders expression trees to parameterized SQL.
//
// Literal values are never interpolated: each becomes a ? placeholder and
// its value is appended to params in placeholder order. NULL is the one
// exception and prints as NULL.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render converts e to SQL. Returns (sql, params, error).
func (r *Renderer) Render(e exprir.Expr) (string, []any, error) {
	w := &writer{}
	if err := w.expr(e); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.params, nil
}

// Unparse converts e to SQL with literals inlined. The output is for
// display and golden files; it is not meant to be executed.
func Unparse(e exprir.Expr) (string, error) {
	w := &writer{inline: true}
	if err := w.expr(e); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

type writer struct {
	sb     strings.Builder
	params []any
	inline bool
}

func (w *writer) expr(e exprir.Expr) error {
	if e == nil {
		return fmt.Errorf("cannot render nil expression")
	}

	switch n := e.(type) {
	case *exprir.Column:
		w.column(n)
		return nil
	case *exprir.Literal:
		return w.literal(n)
	case *exprir.Compare:
		if !n.Op.Valid() {
			return fmt.Errorf("unknown comparison operator %q", n.Op)
		}
		if err := w.operand(n.Left); err != nil {
			return err
		}
		w.sb.WriteString(" " + string(n.Op) + " ")
		return w.operand(n.Right)
	case *exprir.And:
		return w.list("AND", n.Operands)
	case *exprir.Or:
		return w.list("OR", n.Operands)
	case *exprir.Not:
		w.sb.WriteString("NOT (")
		if err := w.expr(n.Operand); err != nil {
			return err
		}
		w.sb.WriteString(")")
		return nil
	case *exprir.IsNull:
		if err := w.operand(n.Operand); err != nil {
			return err
		}
		if n.Negated {
			w.sb.WriteString(" IS NOT NULL")
		} else {
			w.sb.WriteString(" IS NULL")
		}
		return nil
	case *exprir.Cast:
		w.sb.WriteString("CAST(")
		if err := w.expr(n.Operand); err != nil {
			return err
		}
		w.sb.WriteString(" AS " + string(n.To) + ")")
		return nil
	case *exprir.Case:
		return w.caseExpr(n)
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
}

func (w *writer) column(c *exprir.Column) {
	if c.Table != "" {
		w.sb.WriteString(c.Table + ".")
	}
	w.sb.WriteString(c.Name)
}

// literal writes a placeholder, or the inlined value when unparsing.
// A literal with an explicit type is wrapped in a CAST.
func (w *writer) literal(l *exprir.Literal) error {
	if _, isNull := l.Value.(ir.IRNull); isNull || l.Value == nil {
		w.sb.WriteString("NULL")
		return nil
	}

	var text string
	if w.inline {
		s, err := sqlLiteral(l.Value)
		if err != nil {
			return err
		}
		text = s
	} else {
		v, err := ir.GoValue(l.Value)
		if err != nil {
			return fmt.Errorf("convert literal: %w", err)
		}
		w.params = append(w.params, v)
		text = "?"
	}

	if l.Type != "" {
		text = "CAST(" + text + " AS " + string(l.Type) + ")"
	}
	w.sb.WriteString(text)
	return nil
}

// operand writes e, parenthesized when it is itself a predicate.
func (w *writer) operand(e exprir.Expr) error {
	switch e.(type) {
	case *exprir.Compare, *exprir.And, *exprir.Or, *exprir.Not, *exprir.IsNull:
		w.sb.WriteString("(")
		if err := w.expr(e); err != nil {
			return err
		}
		w.sb.WriteString(")")
		return nil
	default:
		return w.expr(e)
	}
}

func (w *writer) list(keyword string, operands []exprir.Expr) error {
	if len(operands) == 0 {
		return fmt.Errorf("%s with no operands", keyword)
	}
	for i, op := range operands {
		if i > 0 {
			w.sb.WriteString(" " + keyword + " ")
		}
		var err error
		switch op.(type) {
		case *exprir.And, *exprir.Or:
			w.sb.WriteString("(")
			err = w.expr(op)
			w.sb.WriteString(")")
		default:
			err = w.expr(op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) caseExpr(c *exprir.Case) error {
	if len(c.Whens) == 0 {
		return fmt.Errorf("%s with no WHEN", caseop.Name)
	}

	w.sb.WriteString(caseop.Name)
	if c.Operand != nil {
		w.sb.WriteString(" ")
		if err := w.operand(c.Operand); err != nil {
			return err
		}
	}
	for _, when := range c.Whens {
		w.sb.WriteString(" WHEN ")
		if err := w.expr(when.Cond); err != nil {
			return err
		}
		w.sb.WriteString(" THEN ")
		if err := w.expr(when.Then); err != nil {
			return err
		}
	}
	if c.Else != nil {
		w.sb.WriteString(" ELSE ")
		if err := w.expr(c.Else); err != nil {
			return err
		}
	}
	w.sb.WriteString(" END")
	return nil
}

// sqlLiteral formats a scalar value as a SQL literal.
func sqlLiteral(v ir.IRValue) (string, error) {
	switch val := v.(type) {
	case ir.IRString:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'", nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.IRBool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return "", fmt.Errorf("unsupported literal type: %T", v)
	}
}
