package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcheck/internal/caseop"
	"github.com/roach88/sqlcheck/internal/ir"
)

// Classifier must satisfy the resolver's capability.
var _ caseop.Classifier = (*Classifier)(nil)

func TestClassifyCanonicalNames(t *testing.T) {
	c := Default()
	for _, typ := range ir.AllTypes {
		assert.Equal(t, typ, c.Classify(typ.Raw()), typ.Name)
	}
}

func TestClassifyAliases(t *testing.T) {
	c := Default()
	tests := []struct {
		raw  ir.RawType
		want ir.Type
	}{
		{"int", ir.TypeInteger},
		{"INT4", ir.TypeInteger},
		{"integer", ir.TypeInteger},
		{"bigint", ir.TypeBigInt},
		{"int unsigned", ir.TypeInteger},
		{"tinyint(1)", ir.TypeTinyInt},
		{"numeric(10, 2)", ir.TypeDecimal},
		{"double precision", ir.TypeDouble},
		{"float4", ir.TypeReal},
		{"varchar(255)", ir.TypeVarchar},
		{"character varying (64)", ir.TypeVarchar},
		{"text", ir.TypeVarchar},
		{"bool", ir.TypeBoolean},
		{"datetime", ir.TypeTimestamp},
		{"timestamptz", ir.TypeTimestampWithTimeZone},
		{"timestamp(3) with time zone", ir.TypeTimestampWithTimeZone},
		{"  Date ", ir.TypeDate},
		{"jsonb", ir.TypeObject},
		{"null", ir.TypeNull},
	}
	for _, tt := range tests {
		t.Run(string(tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.raw))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	c := Default()
	assert.Equal(t, ir.TypeObject, c.Classify(""))
	assert.Equal(t, ir.TypeObject, c.Classify("geometry"))
	assert.False(t, c.Known("geometry"))
	assert.True(t, c.Known("Varchar(10)"))
}

func TestClassifyFullWidth(t *testing.T) {
	// NFKC folds full-width letters
	assert.Equal(t, ir.TypeInteger, Default().Classify("\uff29\uff2e\uff34"))
}

func TestNewWithAliases(t *testing.T) {
	c, err := New(map[string]string{"money": "decimal", "Short Text": "VARCHAR"})
	require.NoError(t, err)

	assert.Equal(t, ir.TypeDecimal, c.Classify("MONEY"))
	assert.Equal(t, ir.TypeVarchar, c.Classify("short  text(20)"))
	assert.Equal(t, ir.TypeObject, Default().Classify("money"), "default table is not modified")
}

func TestNewRejectsUnknownTarget(t *testing.T) {
	_, err := New(map[string]string{"money": "CURRENCY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target type")

	_, err = New(map[string]string{"()": "INTEGER"})
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "VARCHAR", Normalize("varchar (255)"))
	assert.Equal(t, "NUMERIC", Normalize("numeric(10,2)"))
	assert.Equal(t, "INT", Normalize("int(11) unsigned zerofill"))
	assert.Equal(t, "", Normalize("   "))
}
