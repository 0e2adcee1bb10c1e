package common

import (
	"bytes"
	"encoding/json"
)

// Patch is a field of a partial update that can be absent (leave unchanged),
// null (clear) or set. Declare it with `json:",omitzero"` so absence survives
// a round trip.
type Patch[T any] struct {
	Present bool
	Value   *T
}

// Set returns a present patch carrying v.
func Set[T any](v T) Patch[T] { return Patch[T]{Present: true, Value: &v} }

// Clear returns a present patch carrying null.
func Clear[T any]() Patch[T] { return Patch[T]{Present: true} }

func (p Patch[T]) IsZero() bool { return !p.Present }

// IsNull reports a present null.
func (p Patch[T]) IsNull() bool { return p.Present && p.Value == nil }

// Get returns the value and whether one is set.
func (p Patch[T]) Get() (T, bool) {
	if p.Value == nil {
		var zero T
		return zero, false
	}
	return *p.Value, true
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}
