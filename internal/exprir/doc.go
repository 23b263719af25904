// Package exprir provides the expression intermediate representation (IR)
// checked by sqlcheck.
//
// ARCHITECTURE:
//
//	[CUE spec] → [compiler] → [Expr IR] → [typecheck] → static type / diagnostics
//	                                    → [exprsql]   → SQL text
//
// The IR is the contract between front ends and the validator. It covers
// the scalar expression forms a CASE expression is built from:
//   - Column, Literal
//   - Compare (=, <>, <, <=, >, >=), And, Or, Not, IsNull
//   - Cast
//   - Case (searched and simple forms)
//
// SEALED INTERFACE:
//
// Expr is sealed with a marker method. Only pointer types in this package
// implement it, so type switches in consumers are exhaustive:
//
//	switch e := expr.(type) {
//	case *Column:
//	case *Literal:
//	...
//	}
//
// CASE OPERANDS:
//
// Case.Operands flattens a CASE node into binding order
// (cond1, then1, ..., else), the layout expected by package caseop.
// A simple CASE (CASE x WHEN v ...) is rewritten into searched form with
// x = v conditions, and a missing ELSE becomes ELSE NULL, as in standard SQL.
package exprir
