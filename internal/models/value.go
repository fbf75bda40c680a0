package models

import (
	"bytes"
	"encoding/json"
)

// Value is an optional float64. The zero value is undefined ("not yet
// computed" or "no data"), which is distinct from a real 0.0. It marshals
// to JSON null when undefined, so NaN sentinels never reach the wire.
type Value struct {
	Float64 float64
	Valid   bool
}

// Defined returns a defined Value holding f.
func Defined(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Undefined returns the undefined Value.
func Undefined() Value {
	return Value{}
}

var jsonNull = []byte("null")

// MarshalJSON encodes the value as a number, or null when undefined.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return jsonNull, nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON decodes a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*v = Value{}
		return nil
	}
	if err := json.Unmarshal(data, &v.Float64); err != nil {
		return err
	}
	v.Valid = true
	return nil
}
