package compiler

import (
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/sqlcheck/internal/exprir"
	"github.com/roach88/sqlcheck/internal/ir"
)

// compareForms maps comparison keys to operators.
var compareForms = map[string]exprir.CompareOp{
	"eq": exprir.OpEq,
	"ne": exprir.OpNe,
	"lt": exprir.OpLt,
	"le": exprir.OpLe,
	"gt": exprir.OpGt,
	"ge": exprir.OpGe,
}

// parseExpr converts one expression node. Every node is a struct with
// exactly one form key; a literal may carry a type key as well.
func parseExpr(v cue.Value, field string) (exprir.Expr, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: "expression must be a struct such as { col: \"t.c\" }",
			Pos:     v.Pos(),
		}
	}

	keys, err := fieldLabels(v)
	if err != nil {
		return nil, err
	}

	if hasKey(keys, "lit") {
		return parseLiteral(v, field, keys)
	}
	if len(keys) != 1 {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression must have exactly one form key, got [%s]", strings.Join(keys, ", ")),
			Pos:     v.Pos(),
		}
	}

	form := keys[0]
	body := v.LookupPath(cue.MakePath(cue.Str(form)))
	sub := field + "." + form

	if op, ok := compareForms[form]; ok {
		operands, err := parseList(body, sub)
		if err != nil {
			return nil, err
		}
		if len(operands) != 2 {
			return nil, &CompileError{
				Field:   sub,
				Message: fmt.Sprintf("comparison needs exactly two operands, got %d", len(operands)),
				Pos:     body.Pos(),
			}
		}
		return &exprir.Compare{Op: op, Left: operands[0], Right: operands[1]}, nil
	}

	switch form {
	case "col":
		return parseColumn(body, sub)
	case "and":
		operands, err := parseList(body, sub)
		if err != nil {
			return nil, err
		}
		return &exprir.And{Operands: operands}, nil
	case "or":
		operands, err := parseList(body, sub)
		if err != nil {
			return nil, err
		}
		return &exprir.Or{Operands: operands}, nil
	case "not":
		operand, err := parseExpr(body, sub)
		if err != nil {
			return nil, err
		}
		return &exprir.Not{Operand: operand}, nil
	case "isnull", "notnull":
		operand, err := parseExpr(body, sub)
		if err != nil {
			return nil, err
		}
		return &exprir.IsNull{Operand: operand, Negated: form == "notnull"}, nil
	case "cast":
		return parseCast(body, sub)
	case "case":
		return parseCase(body, sub)
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown expression form %q", form),
			Pos:     v.Pos(),
		}
	}
}

// fieldLabels returns the regular field labels of a struct, sorted.
func fieldLabels(v cue.Value) ([]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var labels []string
	for iter.Next() {
		labels = append(labels, iter.Label())
	}
	sort.Strings(labels)
	return labels, nil
}

// rejectStrayKeys fails on any field of v not in allowed. what names the
// struct in the message.
func rejectStrayKeys(v cue.Value, field, what string, allowed ...string) error {
	keys, err := fieldLabels(v)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if !hasKey(allowed, k) {
			return &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unexpected key %q in %s", k, what),
				Pos:     v.Pos(),
			}
		}
	}
	return nil
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// parseColumn accepts "table.column" or "column".
func parseColumn(v cue.Value, field string) (exprir.Expr, error) {
	ref, err := v.String()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "column reference must be a string", Pos: v.Pos()}
	}
	table, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		table, name = "", ref
	}
	if name == "" || strings.Contains(name, ".") {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid column reference %q: use \"table.column\" or \"column\"", ref),
			Pos:     v.Pos(),
		}
	}
	return &exprir.Column{Table: table, Name: name}, nil
}

// parseLiteral reads { lit: value } or { lit: value, type: "DATE" }.
// Floats are rejected: decimals are written as strings with an explicit
// type.
func parseLiteral(v cue.Value, field string, keys []string) (exprir.Expr, error) {
	for _, k := range keys {
		if k != "lit" && k != "type" {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unexpected key %q in literal", k),
				Pos:     v.Pos(),
			}
		}
	}

	litVal := v.LookupPath(cue.MakePath(cue.Str("lit")))
	lit := &exprir.Literal{}

	switch litVal.Kind() {
	case cue.NullKind:
		lit.Value = ir.IRNull{}
	case cue.StringKind:
		s, err := litVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		lit.Value = ir.IRString(s)
	case cue.IntKind:
		n, err := litVal.Int64()
		if err != nil {
			return nil, &CompileError{Field: field + ".lit", Message: "integer literal out of 64-bit range", Pos: litVal.Pos()}
		}
		lit.Value = ir.IRInt(n)
	case cue.BoolKind:
		b, err := litVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		lit.Value = ir.IRBool(b)
	case cue.FloatKind:
		return nil, &CompileError{
			Field:   field + ".lit",
			Message: "float literals are not supported: use a string with an explicit type, e.g. { lit: \"9.99\", type: \"DECIMAL\" }",
			Pos:     litVal.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field + ".lit",
			Message: fmt.Sprintf("literal must be a concrete string, int, bool or null, got %v", litVal.IncompleteKind()),
			Pos:     litVal.Pos(),
		}
	}

	if hasKey(keys, "type") {
		typeVal := v.LookupPath(cue.MakePath(cue.Str("type")))
		t, err := typeVal.String()
		if err != nil || t == "" {
			return nil, &CompileError{Field: field + ".type", Message: "literal type must be a non-empty string", Pos: typeVal.Pos()}
		}
		lit.Type = ir.RawType(t)
	}
	return lit, nil
}

func parseList(v cue.Value, field string) ([]exprir.Expr, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "expected a list of expressions", Pos: v.Pos()}
	}
	var exprs []exprir.Expr
	for i := 0; iter.Next(); i++ {
		e, err := parseExpr(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// parseCast reads { expr: <expr>, as: "TYPE" }.
func parseCast(v cue.Value, field string) (exprir.Expr, error) {
	exprVal := v.LookupPath(cue.MakePath(cue.Str("expr")))
	if !exprVal.Exists() {
		return nil, &CompileError{Field: field + ".expr", Message: "cast expression is required", Pos: v.Pos()}
	}
	operand, err := parseExpr(exprVal, field+".expr")
	if err != nil {
		return nil, err
	}

	asVal := v.LookupPath(cue.MakePath(cue.Str("as")))
	to, err := asVal.String()
	if err != nil || to == "" {
		return nil, &CompileError{Field: field + ".as", Message: "cast target type is required", Pos: v.Pos()}
	}
	return &exprir.Cast{Operand: operand, To: ir.RawType(to)}, nil
}

// parseCase reads { operand?: <expr>, when: [...], else?: <expr> }.
// Searched branches use cond, simple branches use value.
func parseCase(v cue.Value, field string) (exprir.Expr, error) {
	if err := rejectStrayKeys(v, field, "case", "operand", "when", "else"); err != nil {
		return nil, err
	}
	c := &exprir.Case{}

	operandVal := v.LookupPath(cue.MakePath(cue.Str("operand")))
	if operandVal.Exists() {
		operand, err := parseExpr(operandVal, field+".operand")
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}

	condKey := "cond"
	if c.Operand != nil {
		condKey = "value"
	}

	whenVal := v.LookupPath(cue.MakePath(cue.Str("when")))
	if !whenVal.Exists() {
		return nil, &CompileError{Field: field + ".when", Message: "at least one when branch is required", Pos: v.Pos()}
	}
	iter, err := whenVal.List()
	if err != nil {
		return nil, &CompileError{Field: field + ".when", Message: "when must be a list of branches", Pos: whenVal.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		branch := iter.Value()
		branchField := fmt.Sprintf("%s.when[%d]", field, i)

		condVal := branch.LookupPath(cue.MakePath(cue.Str(condKey)))
		if !condVal.Exists() {
			return nil, &CompileError{
				Field:   branchField,
				Message: fmt.Sprintf("branch needs %q", condKey),
				Pos:     branch.Pos(),
			}
		}
		thenVal := branch.LookupPath(cue.MakePath(cue.Str("then")))
		if !thenVal.Exists() {
			return nil, &CompileError{Field: branchField, Message: "branch needs \"then\"", Pos: branch.Pos()}
		}
		if err := rejectStrayKeys(branch, branchField, "branch", condKey, "then"); err != nil {
			return nil, err
		}

		cond, err := parseExpr(condVal, branchField+"."+condKey)
		if err != nil {
			return nil, err
		}
		then, err := parseExpr(thenVal, branchField+".then")
		if err != nil {
			return nil, err
		}

		c.Whens = append(c.Whens, exprir.When{Cond: cond, Then: then})
	}
	if len(c.Whens) == 0 {
		return nil, &CompileError{Field: field + ".when", Message: "at least one when branch is required", Pos: whenVal.Pos()}
	}

	elseVal := v.LookupPath(cue.MakePath(cue.Str("else")))
	if elseVal.Exists() {
		e, err := parseExpr(elseVal, field+".else")
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	return c, nil
}
