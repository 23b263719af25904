package ir

import (
	"encoding/json"
	"fmt"
	"math"
)

// RawType is a declared type exactly as written in DDL or in a spec,
// e.g. "varchar(255)", "int4" or "TIMESTAMP WITH TIME ZONE".
// It is opaque until a classifier maps it to a Type.
type RawType string

// Family is a coarse equivalence class of semantic types.
// Families decide comparability and appear in diagnostics; CASE inference
// compares Type identity.
type Family string

const (
	FamilyNull     Family = "NULL"
	FamilyBoolean  Family = "BOOLEAN"
	FamilyNumeric  Family = "NUMERIC"
	FamilyString   Family = "STRING"
	FamilyTemporal Family = "TEMPORAL"
	FamilyObject   Family = "OBJECT"
)

// String returns the family name.
func (f Family) String() string {
	return string(f)
}

// Type is the validator's semantic type of a value.
//
// Types are comparable with ==. Two types of the same family with different
// names are different types (INTEGER != BIGINT).
// The zero Type means "unknown" and is never produced by a classifier.
type Type struct {
	Name   string
	Family Family
}

// Canonical semantic types.
var (
	TypeNull                  = Type{Name: "NULL", Family: FamilyNull}
	TypeBoolean               = Type{Name: "BOOLEAN", Family: FamilyBoolean}
	TypeTinyInt               = Type{Name: "TINYINT", Family: FamilyNumeric}
	TypeSmallInt              = Type{Name: "SMALLINT", Family: FamilyNumeric}
	TypeInteger               = Type{Name: "INTEGER", Family: FamilyNumeric}
	TypeBigInt                = Type{Name: "BIGINT", Family: FamilyNumeric}
	TypeDecimal               = Type{Name: "DECIMAL", Family: FamilyNumeric}
	TypeReal                  = Type{Name: "REAL", Family: FamilyNumeric}
	TypeDouble                = Type{Name: "DOUBLE", Family: FamilyNumeric}
	TypeVarchar               = Type{Name: "VARCHAR", Family: FamilyString}
	TypeDate                  = Type{Name: "DATE", Family: FamilyTemporal}
	TypeTime                  = Type{Name: "TIME", Family: FamilyTemporal}
	TypeTimestamp             = Type{Name: "TIMESTAMP", Family: FamilyTemporal}
	TypeTimestampWithTimeZone = Type{Name: "TIMESTAMP_WITH_TIME_ZONE", Family: FamilyTemporal}
	TypeObject                = Type{Name: "OBJECT", Family: FamilyObject}
)

// AllTypes lists every canonical type in catalog order.
var AllTypes = []Type{
	TypeNull,
	TypeBoolean,
	TypeTinyInt,
	TypeSmallInt,
	TypeInteger,
	TypeBigInt,
	TypeDecimal,
	TypeReal,
	TypeDouble,
	TypeVarchar,
	TypeDate,
	TypeTime,
	TypeTimestamp,
	TypeTimestampWithTimeZone,
	TypeObject,
}

// LookupType returns the canonical type with the given name.
// The name must match exactly (e.g. "INTEGER", not "int").
func LookupType(name string) (Type, bool) {
	for _, t := range AllTypes {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// IsZero reports whether t is the unknown type.
func (t Type) IsZero() bool {
	return t == Type{}
}

// Raw returns the canonical declared form of t, which classifies back to t.
func (t Type) Raw() RawType {
	return RawType(t.Name)
}

// String returns the type name.
func (t Type) String() string {
	if t.IsZero() {
		return "UNKNOWN"
	}
	return t.Name
}

// MarshalJSON encodes a type as its name.
func (t Type) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Name)
}

// UnmarshalJSON decodes a canonical type name.
func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "" {
		*t = Type{}
		return nil
	}
	found, ok := LookupType(name)
	if !ok {
		return fmt.Errorf("unknown type %q", name)
	}
	*t = found
	return nil
}

// LiteralType returns the natural type of a literal value.
//
// Integers that fit in 32 bits are INTEGER, larger ones BIGINT.
// Arrays and objects have no SQL literal form and map to OBJECT.
func LiteralType(v IRValue) Type {
	switch val := v.(type) {
	case IRNull, nil:
		return TypeNull
	case IRBool:
		return TypeBoolean
	case IRString:
		return TypeVarchar
	case IRInt:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return TypeInteger
		}
		return TypeBigInt
	default:
		return TypeObject
	}
}
