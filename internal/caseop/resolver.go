package caseop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/ir"
)

// Name is the operator name used in diagnostics and rendered SQL.
const Name = "CASE"

// ErrMalformedCall is returned when a binding does not have the
// cond/then pairs plus ELSE shape. It signals a caller bug.
var ErrMalformedCall = errors.New("malformed CASE call")

// Binding gives read access to the operands of one CASE call.
type Binding interface {
	OperandCount() int
	OperandType(i int) ir.RawType
}

// Classifier maps a declared operand type to a semantic type.
// Implementations must be total and free of side effects.
type Classifier interface {
	Classify(raw ir.RawType) ir.Type
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(raw ir.RawType) ir.Type

// Classify calls f(raw).
func (f ClassifierFunc) Classify(raw ir.RawType) ir.Type {
	return f(raw)
}

// Operands is a slice-backed Binding.
type Operands []ir.RawType

// OperandCount returns len(o).
func (o Operands) OperandCount() int { return len(o) }

// OperandType returns o[i].
func (o Operands) OperandType(i int) ir.RawType { return o[i] }

// TypeMismatchError reports CASE branches that do not share one type.
// Families has one entry per THEN branch followed by one for ELSE.
type TypeMismatchError struct {
	Families []ir.Family
}

func (e *TypeMismatchError) Error() string {
	names := make([]string, len(e.Families))
	for i, f := range e.Families {
		names[i] = f.String()
	}
	return fmt.Sprintf("Cannot infer return type of case operator among [%s]", strings.Join(names, ", "))
}

// Code returns the generic diagnostic code. A mismatch is neither a parse
// error nor a runtime error.
func (e *TypeMismatchError) Code() string {
	return diag.CodeGeneric
}

// Resolver infers CASE return types. It holds no per-call state and is safe
// for concurrent use.
type Resolver struct {
	classifier Classifier
}

// NewResolver creates a resolver using c to classify operand types.
func NewResolver(c Classifier) *Resolver {
	return &Resolver{classifier: c}
}

// InferReturnType returns the type of the first THEN branch if every other
// branch, ELSE included, classifies to the identical type.
//
// All branches are classified even after a mismatch so that the error
// carries every branch family.
func (r *Resolver) InferReturnType(b Binding) (ir.Type, error) {
	n := b.OperandCount()
	if n < 3 || n%2 == 0 {
		return ir.Type{}, fmt.Errorf("%w: %d operands, want an odd count of at least 3", ErrMalformedCall, n)
	}

	reference := r.classifier.Classify(b.OperandType(1))
	families := make([]ir.Family, 0, n/2+1)
	families = append(families, reference.Family)

	mismatch := false
	for i := 3; i < n-1; i += 2 {
		branch := r.classifier.Classify(b.OperandType(i))
		families = append(families, branch.Family)
		mismatch = mismatch || branch != reference
	}

	elseType := r.classifier.Classify(b.OperandType(n - 1))
	families = append(families, elseType.Family)
	mismatch = mismatch || elseType != reference

	if mismatch {
		return ir.Type{}, &TypeMismatchError{Families: families}
	}
	return reference, nil
}

// InferReturnType is a convenience wrapper around a one-off Resolver.
func InferReturnType(b Binding, c Classifier) (ir.Type, error) {
	return NewResolver(c).InferReturnType(b)
}
