// Package compiler turns CUE spec files into catalogs and expression trees.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/sqlcheck/internal/catalog"
	"github.com/roach88/sqlcheck/internal/exprir"
	"github.com/roach88/sqlcheck/internal/ir"
)

// Spec is a compiled spec: type aliases, a schema catalog and the named
// expressions to check against it.
type Spec struct {
	// Aliases maps normalized alias names to canonical type names, with
	// chains already resolved.
	Aliases map[string]string

	Catalog     *catalog.Catalog
	Expressions []Expression
}

// Expression is one named expression of a spec.
type Expression struct {
	Name string
	Expr exprir.Expr
	Line int // source line of the expression, 0 if unknown
}

// CompileSpec parses a CUE value into a Spec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the root of a spec instance:
//
//	types: { money: "DECIMAL" }
//	table: orders: { id: "BIGINT", total: "money" }
//	expr: big: { gt: [{ col: "orders.total" }, { lit: 100 }] }
//
// All three sections are optional.
func CompileSpec(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{
		Aliases: map[string]string{},
		Catalog: catalog.New(),
	}

	declared, err := parseTypes(v)
	if err != nil {
		return nil, err
	}
	spec.Aliases, err = ResolveAliases(declared)
	if err != nil {
		return nil, err
	}

	if err := parseTables(v, spec.Catalog); err != nil {
		return nil, err
	}

	spec.Expressions, err = parseExpressions(v)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// parseTypes reads the types section: alias name -> target type name.
func parseTypes(v cue.Value) (map[string]string, error) {
	types := map[string]string{}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return types, nil
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		target, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "types." + iter.Label(),
				Message: "type alias target must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		types[iter.Label()] = target
	}
	return types, nil
}

// parseTables reads the table section into cat. Columns keep declaration
// order.
func parseTables(v cue.Value, cat *catalog.Catalog) error {
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		tableName := iter.Label()
		table := catalog.Table{Name: tableName}

		colIter, err := iter.Value().Fields()
		if err != nil {
			return &CompileError{
				Field:   "table." + tableName,
				Message: "table must be a struct of column: type",
				Pos:     iter.Value().Pos(),
			}
		}
		for colIter.Next() {
			declared, err := colIter.Value().String()
			if err != nil {
				return &CompileError{
					Field:   fmt.Sprintf("table.%s.%s", tableName, colIter.Label()),
					Message: "column type must be a string",
					Pos:     colIter.Value().Pos(),
				}
			}
			table.Columns = append(table.Columns, catalog.Column{
				Name: colIter.Label(),
				Type: ir.RawType(declared),
			})
		}

		if err := cat.AddTable(table); err != nil {
			return &CompileError{Field: "table." + tableName, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	return nil
}

// parseExpressions reads the expr section in declaration order.
func parseExpressions(v cue.Value) ([]Expression, error) {
	var exprs []Expression

	exprsVal := v.LookupPath(cue.ParsePath("expr"))
	if !exprsVal.Exists() {
		return exprs, nil
	}

	iter, err := exprsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		e, err := parseExpr(iter.Value(), "expr."+name)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, Expression{
			Name: name,
			Expr: e,
			Line: iter.Value().Pos().Line(),
		})
	}
	return exprs, nil
}
