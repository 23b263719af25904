// Package caseop infers the return type of a CASE expression.
//
// The operands of a CASE call are laid out in binding order:
//
//	cond1, then1, cond2, then2, ..., condN, thenN, else
//
// so a call always has an odd operand count of at least three. The first
// THEN branch (operand 1) is the reference. Every other THEN branch and the
// ELSE branch must classify to exactly the same semantic type. Types of the
// same family are not interchangeable: INTEGER and BIGINT do not reconcile.
// There is no widening to a common supertype.
//
// On success the reference type is returned. On failure a
// *TypeMismatchError lists the family of every branch in call order, so a
// single diagnostic shows the whole conflict:
//
//	Cannot infer return type of case operator among [NUMERIC, NUMERIC, STRING]
//
// Type classification is an injected capability (Classifier), so the
// resolver has no dependency on the catalog, the parser or the rest of the
// validator.
package caseop
