package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAbsent is returned when decoding the absent sentinel.
var ErrAbsent = errors.New("store value is absent")

// Value is a stored JSON document or the absent sentinel. The zero Value is
// Absent, which is distinct from stored null, 0, "", false, [] and {}.
type Value struct {
	raw json.RawMessage
}

// Absent is the value returned for keys that were never set or were removed.
var Absent = Value{}

// Encode serialises v into a Value. Values that cannot be represented as JSON
// fail with ErrSerialization.
func Encode(v any) (Value, error) {
	switch typed := v.(type) {
	case Value:
		if typed.IsAbsent() {
			return Value{}, fmt.Errorf("%w: absent value cannot be stored", ErrSerialization)
		}
		return typed, nil
	case json.RawMessage:
		if !json.Valid(typed) {
			return Value{}, fmt.Errorf("%w: invalid json", ErrSerialization)
		}
		return Value{raw: bytes.Clone(typed)}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return Value{raw: raw}, nil
}

// MustEncode is Encode for values known to be serialisable, such as literals
// in tests and defaults.
func MustEncode(v any) Value {
	value, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return value
}

// IsAbsent reports whether v is the absent sentinel.
func (v Value) IsAbsent() bool {
	return v.raw == nil
}

// Raw returns a copy of the JSON document, or nil when absent.
func (v Value) Raw() json.RawMessage {
	if v.raw == nil {
		return nil
	}
	return bytes.Clone(v.raw)
}

// Decode unmarshals the document into target.
func (v Value) Decode(target any) error {
	if v.IsAbsent() {
		return ErrAbsent
	}
	if err := json.Unmarshal(v.raw, target); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

// Interface decodes the document into plain Go values (maps, slices, strings,
// float64, bool, nil). Empty sequences decode to empty, non-nil slices.
func (v Value) Interface() (any, error) {
	var out any
	if err := v.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether two values hold the same JSON document after
// normalisation.
func (v Value) Equal(other Value) bool {
	if v.IsAbsent() || other.IsAbsent() {
		return v.IsAbsent() == other.IsAbsent()
	}
	left, err := v.Interface()
	if err != nil {
		return false
	}
	right, err := other.Interface()
	if err != nil {
		return false
	}
	a, _ := json.Marshal(left)
	b, _ := json.Marshal(right)
	return bytes.Equal(a, b)
}

func (v Value) String() string {
	if v.IsAbsent() {
		return "<absent>"
	}
	return string(v.raw)
}

func (v Value) size() int64 {
	return int64(len(v.raw))
}
