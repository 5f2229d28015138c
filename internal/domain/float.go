package domain

import (
	"encoding/json"
	"math"
)

// Float is an optional observation or derived value. The zero value is
// absent. Absent values never turn into zero: every combinator returns an
// absent result when any operand is absent.
type Float struct {
	value float64
	valid bool
}

// Some wraps a present value. NaN and ±Inf are treated as absent.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{value: v, valid: true}
}

// None returns an absent value.
func None() Float { return Float{} }

// Get returns the value and whether it is present.
func (f Float) Get() (float64, bool) { return f.value, f.valid }

// Valid reports whether the value is present.
func (f Float) Valid() bool { return f.valid }

// Equal reports whether the value is present and exactly v.
func (f Float) Equal(v float64) bool { return f.valid && f.value == v }

// Map applies fn to a present value.
func (f Float) Map(fn func(float64) float64) Float {
	if !f.valid {
		return Float{}
	}
	return Some(fn(f.value))
}

// Map2 applies fn when both values are present.
func Map2(a, b Float, fn func(a, b float64) float64) Float {
	if !a.valid || !b.valid {
		return Float{}
	}
	return Some(fn(a.value, b.value))
}

// Sub returns a − b.
func Sub(a, b Float) Float {
	return Map2(a, b, func(x, y float64) float64 { return x - y })
}

// All unwraps every value, reporting false if any is absent.
func All(fs ...Float) ([]float64, bool) {
	out := make([]float64, len(fs))
	for i, f := range fs {
		if !f.valid {
			return nil, false
		}
		out[i] = f.value
	}
	return out, true
}

// MarshalJSON encodes absent values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as absent.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
