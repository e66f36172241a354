package store

import "time"

// Value is the record stored under every key: a data mapping plus write
// timestamps. CreatedAt is set on the first write of a key and preserved on
// every later write; UpdatedAt is refreshed on every write. Both are managed
// by the table; a caller-supplied CreatedAt is honored only on first insert.
//
// Data is normalized through the JSON codec when written: numbers read back
// as float64 and nested values as plain maps and slices, regardless of the
// Go types that went in. Data the codec cannot represent fails validation.
type Value struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Data      map[string]any `json:"data"`
}

// NewValue wraps a data mapping in a Value. Timestamps are zero; the table
// fills them in on Set.
func NewValue(data map[string]any) Value {
	return Value{Data: data}
}

// Validate checks that the value is well-formed at the write boundary.
// Data must be a mapping; nil is rejected before any mutation is attempted.
func (v Value) Validate() error {
	if v.Data == nil {
		return ErrInvalidValue
	}
	return nil
}
