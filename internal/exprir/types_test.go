package exprir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/ir"
)

func lit(v ir.IRValue) *Literal { return &Literal{Value: v} }

func TestCaseOperands_Searched(t *testing.T) {
	cond1 := &Compare{Op: OpEq, Left: &Column{Name: "status"}, Right: lit(ir.IRString("rush"))}
	cond2 := &IsNull{Operand: &Column{Name: "status"}}
	c := &Case{
		Whens: []When{
			{Cond: cond1, Then: lit(ir.IRInt(1))},
			{Cond: cond2, Then: lit(ir.IRInt(2))},
		},
		Else: lit(ir.IRInt(0)),
	}

	ops := c.Operands()

	require.Len(t, ops, 5)
	assert.Same(t, cond1, ops[0])
	assert.Equal(t, lit(ir.IRInt(1)), ops[1])
	assert.Same(t, cond2, ops[2])
	assert.Equal(t, lit(ir.IRInt(2)), ops[3])
	assert.Equal(t, lit(ir.IRInt(0)), ops[4])
}

func TestCaseOperands_Simple(t *testing.T) {
	status := &Column{Name: "status"}
	c := &Case{
		Operand: status,
		Whens:   []When{{Cond: lit(ir.IRString("rush")), Then: lit(ir.IRInt(1))}},
		Else:    lit(ir.IRInt(0)),
	}

	ops := c.Operands()

	require.Len(t, ops, 3)
	cmp, ok := ops[0].(*Compare)
	require.True(t, ok, "simple CASE condition is rewritten to a comparison")
	assert.Equal(t, OpEq, cmp.Op)
	assert.Same(t, status, cmp.Left)
	assert.Equal(t, lit(ir.IRString("rush")), cmp.Right)
}

func TestCaseOperands_MissingElse(t *testing.T) {
	c := &Case{Whens: []When{{Cond: lit(ir.IRBool(true)), Then: lit(ir.IRInt(1))}}}

	ops := c.Operands()

	require.Len(t, ops, 3)
	assert.Equal(t, Null(), ops[2])
	assert.Nil(t, c.Else, "Operands does not modify the node")
}

func TestCaseOperands_OddLength(t *testing.T) {
	for n := 1; n <= 5; n++ {
		c := &Case{}
		for i := 0; i < n; i++ {
			c.Whens = append(c.Whens, When{Cond: lit(ir.IRBool(true)), Then: lit(ir.IRInt(int64(i)))})
		}
		ops := c.Operands()
		assert.Len(t, ops, 2*n+1)
	}
}

func TestCompareOpValid(t *testing.T) {
	for _, op := range []CompareOp{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe} {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, CompareOp("!=").Valid())
	assert.False(t, CompareOp("").Valid())
}
