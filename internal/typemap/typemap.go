// Package typemap classifies declared SQL types into semantic types.
//
// Declared types come from DDL written for different engines, so the
// default table knows the canonical names plus the usual SQLite, PostgreSQL
// and MySQL spellings. Classification is total: anything unrecognised is
// OBJECT.
package typemap

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sqlcheck/internal/ir"
)

// defaultAliases maps normalized spellings to canonical types.
// Canonical names are added automatically.
var defaultAliases = map[string]ir.Type{
	"BOOL":                        ir.TypeBoolean,
	"INT1":                        ir.TypeTinyInt,
	"INT2":                        ir.TypeSmallInt,
	"SMALLSERIAL":                 ir.TypeSmallInt,
	"INT":                         ir.TypeInteger,
	"INT4":                        ir.TypeInteger,
	"MEDIUMINT":                   ir.TypeInteger,
	"SERIAL":                      ir.TypeInteger,
	"INT8":                        ir.TypeBigInt,
	"BIGSERIAL":                   ir.TypeBigInt,
	"NUMERIC":                     ir.TypeDecimal,
	"DEC":                         ir.TypeDecimal,
	"NUMBER":                      ir.TypeDecimal,
	"FLOAT4":                      ir.TypeReal,
	"FLOAT":                       ir.TypeDouble,
	"FLOAT8":                      ir.TypeDouble,
	"DOUBLE PRECISION":            ir.TypeDouble,
	"CHAR":                        ir.TypeVarchar,
	"CHARACTER":                   ir.TypeVarchar,
	"CHARACTER VARYING":           ir.TypeVarchar,
	"NCHAR":                       ir.TypeVarchar,
	"NVARCHAR":                    ir.TypeVarchar,
	"VARCHAR2":                    ir.TypeVarchar,
	"TEXT":                        ir.TypeVarchar,
	"CLOB":                        ir.TypeVarchar,
	"STRING":                      ir.TypeVarchar,
	"UUID":                        ir.TypeVarchar,
	"DATETIME":                    ir.TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": ir.TypeTimestamp,
	"TIME WITHOUT TIME ZONE":      ir.TypeTime,
	"TIMESTAMPTZ":                 ir.TypeTimestampWithTimeZone,
	"TIMESTAMP WITH TIME ZONE":    ir.TypeTimestampWithTimeZone,
	"JSON":                        ir.TypeObject,
	"JSONB":                       ir.TypeObject,
	"BLOB":                        ir.TypeObject,
	"BYTEA":                       ir.TypeObject,
}

// Classifier maps declared types to semantic types.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	aliases map[string]ir.Type
}

// Default returns a classifier with the built-in alias table.
func Default() *Classifier {
	c, _ := New(nil)
	return c
}

// New returns a classifier with the built-in table extended by extra.
// Keys are declared spellings (normalized like any input), values must be
// canonical type names such as "DECIMAL".
func New(extra map[string]string) (*Classifier, error) {
	aliases := make(map[string]ir.Type, len(defaultAliases)+len(ir.AllTypes)+len(extra))
	for _, t := range ir.AllTypes {
		aliases[t.Name] = t
	}
	// canonical names with a space where the canonical form uses '_'
	aliases["TIMESTAMP WITH TIME ZONE"] = ir.TypeTimestampWithTimeZone
	for k, v := range defaultAliases {
		aliases[k] = v
	}

	for alias, target := range extra {
		t, ok := ir.LookupType(Normalize(ir.RawType(target)))
		if !ok {
			return nil, fmt.Errorf("alias %q: unknown target type %q", alias, target)
		}
		key := Normalize(ir.RawType(alias))
		if key == "" {
			return nil, fmt.Errorf("alias for %q: empty name", target)
		}
		aliases[key] = t
	}

	return &Classifier{aliases: aliases}, nil
}

// Classify returns the semantic type of raw. Unknown or empty declared
// types are OBJECT.
func (c *Classifier) Classify(raw ir.RawType) ir.Type {
	if t, ok := c.aliases[Normalize(raw)]; ok {
		return t
	}
	return ir.TypeObject
}

// Known reports whether raw is in the alias table.
func (c *Classifier) Known(raw ir.RawType) bool {
	_, ok := c.aliases[Normalize(raw)]
	return ok
}

// Normalize brings a declared type to lookup form: NFKC, upper case,
// collapsed whitespace, no parameter list and no UNSIGNED modifier.
//
//	"varchar (255)"          -> "VARCHAR"
//	"numeric(10, 2)"         -> "NUMERIC"
//	"int unsigned"           -> "INT"
//	"timestamp(3) with time zone" -> "TIMESTAMP WITH TIME ZONE"
func Normalize(raw ir.RawType) string {
	s := strings.ToUpper(norm.NFKC.String(string(raw)))
	s = stripParams(s)
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if f == "UNSIGNED" || f == "ZEROFILL" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// stripParams removes every parenthesized group, e.g. precision and scale.
func stripParams(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			b.WriteRune(' ')
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
