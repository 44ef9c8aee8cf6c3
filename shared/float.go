package shared

import (
	"math"
	"strconv"
	"strings"
)

// Float represents a float64 that may be undefined. Undefined values stand in for
// insufficient history, division by zero and missing or malformed input.
type Float struct {
	Float64 float64
	Valid   bool
}

// Undefined is the undefined float value.
var Undefined = Float{}

// NewFloat wraps the provided value. NaN and infinite values are undefined, negative zero is
// normalized to zero.
func NewFloat(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	if v == 0 {
		v = 0
	}

	return Float{Float64: v, Valid: true}
}

// Add returns f + o.
func (f Float) Add(o Float) Float {
	if !f.Valid || !o.Valid {
		return Undefined
	}

	return NewFloat(f.Float64 + o.Float64)
}

// Sub returns f - o.
func (f Float) Sub(o Float) Float {
	if !f.Valid || !o.Valid {
		return Undefined
	}

	return NewFloat(f.Float64 - o.Float64)
}

// Mul returns f * o.
func (f Float) Mul(o Float) Float {
	if !f.Valid || !o.Valid {
		return Undefined
	}

	return NewFloat(f.Float64 * o.Float64)
}

// Div returns f / o, undefined when o is zero.
func (f Float) Div(o Float) Float {
	if !f.Valid || !o.Valid || o.Float64 == 0 {
		return Undefined
	}

	return NewFloat(f.Float64 / o.Float64)
}

// Scale returns f * k.
func (f Float) Scale(k float64) Float {
	if !f.Valid {
		return Undefined
	}

	return NewFloat(f.Float64 * k)
}

// Neg returns -f.
func (f Float) Neg() Float {
	return f.Scale(-1)
}

// Less reports whether f < o. It is false when either value is undefined.
func (f Float) Less(o Float) bool {
	return f.Valid && o.Valid && f.Float64 < o.Float64
}

// Greater reports whether f > o. It is false when either value is undefined.
func (f Float) Greater(o Float) bool {
	return f.Valid && o.Valid && f.Float64 > o.Float64
}

// LessThan reports whether f < v. It is false when f is undefined.
func (f Float) LessThan(v float64) bool {
	return f.Valid && f.Float64 < v
}

// GreaterThan reports whether f > v. It is false when f is undefined.
func (f Float) GreaterThan(v float64) bool {
	return f.Valid && f.Float64 > v
}

// Nullable returns the value as a SQL parameter, nil when undefined.
func (f Float) Nullable() any {
	if !f.Valid {
		return nil
	}

	return f.Float64
}

// String stringifies the value, undefined values are empty.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}

	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// MarshalCSV encodes the value as a csv field.
func (f Float) MarshalCSV() (string, error) {
	return f.String(), nil
}

// UnmarshalCSV decodes a csv field. Empty, null or unparseable fields are undefined.
func (f *Float) UnmarshalCSV(s string) error {
	*f = ParseFloat(s)
	return nil
}

// ParseFloat parses the provided text, anything that is not a finite number is undefined.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return Undefined
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Undefined
	}

	return NewFloat(v)
}

// Floats wraps the provided values.
func Floats(vals ...float64) []Float {
	out := make([]Float, len(vals))
	for idx := range vals {
		out[idx] = NewFloat(vals[idx])
	}

	return out
}
