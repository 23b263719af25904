package exprsql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/exprir"
	"github.com/roach88/sqlcheck/internal/ir"
)

func col(table, name string) *exprir.Column { return &exprir.Column{Table: table, Name: name} }

func lit(v ir.IRValue) *exprir.Literal { return &exprir.Literal{Value: v} }

func TestRender(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name   string
		expr   exprir.Expr
		sql    string
		params []any
	}{
		{
			name: "column",
			expr: col("orders", "qty"),
			sql:  "orders.qty",
		},
		{
			name:   "comparison",
			expr:   &exprir.Compare{Op: exprir.OpGe, Left: col("", "qty"), Right: lit(ir.IRInt(10))},
			sql:    "qty >= ?",
			params: []any{int64(10)},
		},
		{
			name: "null is inlined",
			expr: &exprir.Compare{Op: exprir.OpNe, Left: col("", "qty"), Right: exprir.Null()},
			sql:  "qty <> NULL",
		},
		{
			name: "nested and/or",
			expr: &exprir.And{Operands: []exprir.Expr{
				col("", "paid"),
				&exprir.Or{Operands: []exprir.Expr{
					&exprir.Compare{Op: exprir.OpEq, Left: col("", "status"), Right: lit(ir.IRString("open"))},
					&exprir.IsNull{Operand: col("", "status")},
				}},
			}},
			sql:    "paid AND (status = ? OR status IS NULL)",
			params: []any{"open"},
		},
		{
			name: "not and is not null",
			expr: &exprir.Not{Operand: &exprir.IsNull{Operand: col("", "x"), Negated: true}},
			sql:  "NOT (x IS NOT NULL)",
		},
		{
			name:   "cast and typed literal",
			expr:   &exprir.Cast{Operand: &exprir.Literal{Value: ir.IRString("2024-01-31"), Type: "DATE"}, To: "TIMESTAMP"},
			sql:    "CAST(CAST(? AS DATE) AS TIMESTAMP)",
			params: []any{"2024-01-31"},
		},
		{
			name: "searched case",
			expr: &exprir.Case{
				Whens: []exprir.When{
					{Cond: &exprir.Compare{Op: exprir.OpGt, Left: col("", "qty"), Right: lit(ir.IRInt(10))}, Then: lit(ir.IRString("big"))},
					{Cond: col("", "paid"), Then: lit(ir.IRString("paid"))},
				},
				Else: lit(ir.IRString("other")),
			},
			sql:    "CASE WHEN qty > ? THEN ? WHEN paid THEN ? ELSE ? END",
			params: []any{int64(10), "big", "paid", "other"},
		},
		{
			name: "simple case without else",
			expr: &exprir.Case{
				Operand: col("", "status"),
				Whens:   []exprir.When{{Cond: lit(ir.IRString("o")), Then: lit(ir.IRBool(true))}},
			},
			sql:    "CASE status WHEN ? THEN ? END",
			params: []any{"o", true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlText, params, err := r.Render(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sqlText)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer()

	_, _, err := r.Render(nil)
	assert.Error(t, err)

	_, _, err = r.Render(&exprir.Case{})
	assert.ErrorContains(t, err, "no WHEN")

	_, _, err = r.Render(lit(ir.IRArray{ir.IRInt(1)}))
	assert.ErrorContains(t, err, "no SQL parameter form")

	_, _, err = r.Render(&exprir.Compare{Op: "~", Left: col("", "a"), Right: col("", "b")})
	assert.ErrorContains(t, err, "unknown comparison operator")
}

func TestUnparse(t *testing.T) {
	e := &exprir.Case{
		Whens: []exprir.When{
			{Cond: &exprir.Compare{Op: exprir.OpEq, Left: col("o", "note"), Right: lit(ir.IRString("it's"))}, Then: lit(ir.IRInt(-1))},
			{Cond: lit(ir.IRBool(false)), Then: exprir.Null()},
		},
		Else: &exprir.Literal{Value: ir.IRInt(7), Type: "BIGINT"},
	}

	got, err := Unparse(e)
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN o.note = 'it''s' THEN -1 WHEN FALSE THEN NULL ELSE CAST(7 AS BIGINT) END", got)
}

func TestRenderedSQLExecutes(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	e := &exprir.Case{
		Whens: []exprir.When{
			{Cond: &exprir.Compare{Op: exprir.OpGt, Left: lit(ir.IRInt(12)), Right: lit(ir.IRInt(10))}, Then: lit(ir.IRString("big"))},
		},
		Else: lit(ir.IRString("small")),
	}

	sqlText, params, err := NewRenderer().Render(e)
	require.NoError(t, err)

	var got string
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT "+sqlText, params...).Scan(&got))
	assert.Equal(t, "big", got)
}
