// Package fieldtype defines the closed set of field types a descriptor may
// declare, together with each type's default value and numeric bounds.
//
// Values are carried as cty.Value so they travel through the same value
// system the execution engine uses for runner inputs and outputs.
package fieldtype

import (
	"math"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Type is a field type tag. The zero value is String.
type Type int

const (
	String Type = iota
	Int
	Float
	Boolean
)

// Bounds for the numeric types, inclusive.
const (
	IntMin   = math.MinInt32
	IntMax   = math.MaxInt32
	FloatMin = -3.402823e+38
	FloatMax = 3.402823e+38
)

// All lists every type in declaration order.
var All = []Type{String, Int, Float, Boolean}

// Parse maps a type tag to a Type. Tags are matched case-insensitively and
// anything unrecognized falls back to String, so Parse never fails.
func Parse(tag string) Type {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "INT":
		return Int
	case "FLOAT":
		return Float
	case "BOOLEAN":
		return Boolean
	default:
		return String
	}
}

// Known reports whether tag names one of the closed set of types.
func Known(tag string) bool {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "STRING", "INT", "FLOAT", "BOOLEAN":
		return true
	}
	return false
}

// String returns the canonical tag.
func (t Type) String() string {
	switch t {
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	case Boolean:
		return "BOOLEAN"
	default:
		return "STRING"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with Parse semantics.
func (t *Type) UnmarshalText(b []byte) error {
	*t = Parse(string(b))
	return nil
}

// CtyType returns the cty type values of this field type are carried in.
func (t Type) CtyType() cty.Type {
	switch t {
	case Int, Float:
		return cty.Number
	case Boolean:
		return cty.Bool
	default:
		return cty.String
	}
}

// Default returns the zero value of the type.
func (t Type) Default() cty.Value {
	switch t {
	case Int:
		return cty.NumberIntVal(0)
	case Float:
		return cty.NumberFloatVal(0)
	case Boolean:
		return cty.False
	default:
		return cty.StringVal("")
	}
}

// Bounds returns the inclusive range of a numeric type. ok is false for
// non-numeric types.
func (t Type) Bounds() (lo, hi float64, ok bool) {
	switch t {
	case Int:
		return IntMin, IntMax, true
	case Float:
		return FloatMin, FloatMax, true
	}
	return 0, 0, false
}

// Numeric reports whether the type carries numbers.
func (t Type) Numeric() bool {
	_, _, ok := t.Bounds()
	return ok
}
