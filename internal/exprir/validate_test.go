package exprir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/ir"
)

func TestValidate_WellFormedCase(t *testing.T) {
	e := &Case{
		Whens: []When{{
			Cond: &And{Operands: []Expr{
				&Compare{Op: OpGt, Left: &Column{Table: "orders", Name: "total"}, Right: lit(ir.IRInt(100))},
				&Not{Operand: &IsNull{Operand: &Column{Name: "status"}}},
			}},
			Then: &Cast{Operand: lit(ir.IRString("1.5")), To: "DECIMAL"},
		}},
		Else: lit(ir.IRNull{}),
	}

	result := Validate(e)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestValidate_NilRoot(t *testing.T) {
	result := Validate(nil)

	assert.False(t, result.Valid)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, "<root>: missing expression", result.Problems[0])
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	e := &Case{
		Whens: []When{
			{Cond: nil, Then: &Column{}},
			{Cond: &Compare{Op: "!=", Left: lit(ir.IRInt(1)), Right: lit(ir.IRInt(2))}, Then: &Cast{Operand: lit(ir.IRInt(1))}},
		},
		Else: &Or{Operands: []Expr{lit(ir.IRBool(true))}},
	}

	result := Validate(e)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"case.when[0].cond: missing expression",
		"case.when[0].then: column name is required",
		`case.when[1].cond: unknown comparison operator "!="`,
		"case.when[1].then: cast target type is required",
		"case.else: or needs at least two operands, got 1",
	}, result.Problems)
}

func TestValidate_CaseWithoutWhen(t *testing.T) {
	result := Validate(&Case{Else: lit(ir.IRInt(1))})

	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "CASE needs at least one WHEN")
}

func TestValidate_LiteralWithoutValue(t *testing.T) {
	result := Validate(&Literal{})
	assert.False(t, result.Valid)
}

func TestValidate_NestedPaths(t *testing.T) {
	e := &And{Operands: []Expr{
		lit(ir.IRBool(true)),
		&Case{Operand: &Column{}, Whens: []When{{Cond: lit(ir.IRInt(1)), Then: lit(ir.IRInt(1))}}},
	}}

	result := Validate(e)

	assert.Equal(t, []string{"and[1].case.operand: column name is required"}, result.Problems)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "case", Join("", "case"))
	assert.Equal(t, "case.else", Join("case", "else"))
	assert.Equal(t, "case.when[2]", Index("case.when", 2))
}
