package caseop

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/ir"
)

// canonical classifies canonical type names and nothing else.
var canonical = ClassifierFunc(func(raw ir.RawType) ir.Type {
	t, ok := ir.LookupType(string(raw))
	if !ok {
		return ir.TypeObject
	}
	return t
})

// countingClassifier records every operand it was asked about.
type countingClassifier struct {
	mu    sync.Mutex
	calls []ir.RawType
}

func (c *countingClassifier) Classify(raw ir.RawType) ir.Type {
	c.mu.Lock()
	c.calls = append(c.calls, raw)
	c.mu.Unlock()
	return canonical.Classify(raw)
}

// call builds a binding from branch types: thens..., else.
// Conditions are BOOLEAN placeholders.
func call(branches ...ir.Type) Operands {
	ops := Operands{}
	for _, b := range branches[:len(branches)-1] {
		ops = append(ops, ir.TypeBoolean.Raw(), b.Raw())
	}
	return append(ops, branches[len(branches)-1].Raw())
}

func TestInferReturnType_ScenarioA(t *testing.T) {
	// CASE WHEN c THEN <INTEGER> ELSE <INTEGER> END
	typ, err := InferReturnType(call(ir.TypeInteger, ir.TypeInteger), canonical)

	require.NoError(t, err)
	assert.Equal(t, ir.TypeInteger, typ)
}

func TestInferReturnType_ScenarioB(t *testing.T) {
	// two THEN branches of INTEGER and an ELSE of VARCHAR
	_, err := InferReturnType(call(ir.TypeInteger, ir.TypeInteger, ir.TypeVarchar), canonical)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []ir.Family{ir.FamilyNumeric, ir.FamilyNumeric, ir.FamilyString}, mismatch.Families)
	assert.Equal(t, "Cannot infer return type of case operator among [NUMERIC, NUMERIC, STRING]", err.Error())
}

func TestInferReturnType_ScenarioC(t *testing.T) {
	typ, err := InferReturnType(call(ir.TypeBoolean, ir.TypeBoolean, ir.TypeBoolean), canonical)

	require.NoError(t, err)
	assert.Equal(t, ir.TypeBoolean, typ)
}

func TestInferReturnType_MinimalCall(t *testing.T) {
	tests := []struct {
		name     string
		then     ir.Type
		elseType ir.Type
		ok       bool
	}{
		{"identical", ir.TypeVarchar, ir.TypeVarchar, true},
		{"different family", ir.TypeVarchar, ir.TypeInteger, false},
		{"same family", ir.TypeInteger, ir.TypeBigInt, false},
		{"null else", ir.TypeDate, ir.TypeNull, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := InferReturnType(call(tt.then, tt.elseType), canonical)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.then, typ)
				return
			}
			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, []ir.Family{tt.then.Family, tt.elseType.Family}, mismatch.Families)
		})
	}
}

func TestInferReturnType_SameFamilyIsMismatch(t *testing.T) {
	_, err := InferReturnType(call(ir.TypeInteger, ir.TypeSmallInt, ir.TypeInteger), canonical)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []ir.Family{ir.FamilyNumeric, ir.FamilyNumeric, ir.FamilyNumeric}, mismatch.Families,
		"message shows one family even though the types differ")
}

func TestInferReturnType_ReturnsFirstThen(t *testing.T) {
	// classifier that maps two distinct raw spellings to the same type
	aliasing := ClassifierFunc(func(raw ir.RawType) ir.Type {
		if raw == "int" || raw == "int4" {
			return ir.TypeInteger
		}
		return canonical.Classify(raw)
	})

	typ, err := InferReturnType(Operands{"BOOLEAN", "int", "BOOLEAN", "int4", "INTEGER"}, aliasing)

	require.NoError(t, err)
	assert.Equal(t, ir.TypeInteger, typ)
}

func TestInferReturnType_FamilyListLength(t *testing.T) {
	for pairs := 1; pairs <= 6; pairs++ {
		t.Run(fmt.Sprintf("%d_pairs", pairs), func(t *testing.T) {
			branches := make([]ir.Type, 0, pairs+1)
			for i := 0; i < pairs; i++ {
				branches = append(branches, ir.TypeDouble)
			}
			branches = append(branches, ir.TypeVarchar)
			ops := call(branches...)

			_, err := InferReturnType(ops, canonical)

			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Len(t, mismatch.Families, (len(ops)-1)/2+1)
		})
	}
}

func TestInferReturnType_NoEarlyExit(t *testing.T) {
	cls := &countingClassifier{}
	ops := call(ir.TypeInteger, ir.TypeVarchar, ir.TypeInteger, ir.TypeDate)

	_, err := NewResolver(cls).InferReturnType(ops)

	require.Error(t, err)
	// every THEN and the ELSE are classified, conditions never are
	assert.Equal(t, []ir.RawType{"INTEGER", "VARCHAR", "INTEGER", "DATE"}, cls.calls)
}

func TestInferReturnType_OrderSensitivity(t *testing.T) {
	first, errA := InferReturnType(call(ir.TypeInteger, ir.TypeVarchar, ir.TypeInteger), canonical)
	second, errB := InferReturnType(call(ir.TypeInteger, ir.TypeInteger, ir.TypeVarchar), canonical)

	assert.True(t, first.IsZero())
	assert.True(t, second.IsZero())

	var a, b *TypeMismatchError
	require.ErrorAs(t, errA, &a)
	require.ErrorAs(t, errB, &b)
	assert.Equal(t, []ir.Family{ir.FamilyNumeric, ir.FamilyString, ir.FamilyNumeric}, a.Families)
	assert.Equal(t, []ir.Family{ir.FamilyNumeric, ir.FamilyNumeric, ir.FamilyString}, b.Families)
}

func TestInferReturnType_Idempotent(t *testing.T) {
	r := NewResolver(canonical)
	ops := call(ir.TypeTimestamp, ir.TypeTimestamp, ir.TypeTime)

	_, err1 := r.InferReturnType(ops)
	_, err2 := r.InferReturnType(ops)
	assert.Equal(t, err1, err2)

	ok := call(ir.TypeDecimal, ir.TypeDecimal)
	t1, _ := r.InferReturnType(ok)
	t2, _ := r.InferReturnType(ok)
	assert.Equal(t, t1, t2)
}

func TestInferReturnType_Concurrent(t *testing.T) {
	r := NewResolver(canonical)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				typ, err := r.InferReturnType(call(ir.TypeReal, ir.TypeReal))
				assert.NoError(t, err)
				assert.Equal(t, ir.TypeReal, typ)
				return
			}
			_, err := r.InferReturnType(call(ir.TypeReal, ir.TypeDouble))
			assert.Error(t, err)
		}(i)
	}
	wg.Wait()
}

func TestInferReturnType_MalformedCall(t *testing.T) {
	for _, ops := range []Operands{
		{},
		{"BOOLEAN"},
		{"BOOLEAN", "INTEGER"},
		{"BOOLEAN", "INTEGER", "BOOLEAN", "INTEGER"},
	} {
		_, err := InferReturnType(ops, canonical)
		assert.True(t, errors.Is(err, ErrMalformedCall), "len %d", len(ops))

		var mismatch *TypeMismatchError
		assert.False(t, errors.As(err, &mismatch))
	}
}

func TestTypeMismatchErrorCode(t *testing.T) {
	_, err := InferReturnType(call(ir.TypeBoolean, ir.TypeVarchar), canonical)

	d := diag.FromError("case", err)
	assert.Equal(t, diag.CodeGeneric, d.Code)
	assert.NotEqual(t, diag.CodeParse, d.Code)
	assert.NotEqual(t, diag.CodeRuntime, d.Code)
	assert.Equal(t, "Cannot infer return type of case operator among [BOOLEAN, STRING]", d.Message)
}
