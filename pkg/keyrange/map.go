package keyrange

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// Map is a lookup table keyed by KeyRange, used for Enum dispatch and
// BytesSize::Enum. Internally it keeps the same three-way split as the
// original Rust KeyRangeMap: literal values, range predicates, and a single
// "full" default — this is purely an implementation detail, not part of the
// externally observable contract, which is "ranges in, value out".
//
// Lookup precedence:
//  1. an exact Value(k) entry for the key,
//  2. the first matching range entry — iteration order over range entries is
//     unspecified; schema authors must avoid overlapping ranges, this is not
//     checked,
//  3. the Full default, if one was inserted.
type Map[V any] struct {
	values  map[int64]V
	ranges  []rangeEntry[V]
	dflt    *V
	dfltSet bool
}

type rangeEntry[V any] struct {
	key   KeyRange
	value V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[int64]V)}
}

// Insert adds or replaces the value for the given range and returns the
// previous value, if any.
func (m *Map[V]) Insert(r KeyRange, v V) (prev V, hadPrev bool) {
	switch r.kind {
	case Value:
		prev, hadPrev = m.values[r.start]
		m.values[r.start] = v
	case Full:
		if m.dfltSet {
			prev, hadPrev = *m.dflt, true
		}
		d := v
		m.dflt = &d
		m.dfltSet = true
	default:
		for i, e := range m.ranges {
			if e.key == r {
				prev, hadPrev = e.value, true
				m.ranges[i].value = v
				return prev, hadPrev
			}
		}
		m.ranges = append(m.ranges, rangeEntry[V]{key: r, value: v})
	}
	return prev, hadPrev
}

// Remove deletes the entry for the given range, if present.
func (m *Map[V]) Remove(r KeyRange) {
	switch r.kind {
	case Value:
		delete(m.values, r.start)
	case Full:
		m.dflt = nil
		m.dfltSet = false
	default:
		for i, e := range m.ranges {
			if e.key == r {
				m.ranges = append(m.ranges[:i], m.ranges[i+1:]...)
				return
			}
		}
	}
}

// Get looks up key following the exact-value, then-range, then-default
// precedence.
func (m *Map[V]) Get(key int64) (V, bool) {
	if v, ok := m.values[key]; ok {
		return v, true
	}
	for _, e := range m.ranges {
		if e.key.Contains(key) {
			return e.value, true
		}
	}
	if m.dfltSet {
		return *m.dflt, true
	}
	var zero V
	return zero, false
}

// Clear removes every entry.
func (m *Map[V]) Clear() {
	m.values = make(map[int64]V)
	m.ranges = nil
	m.dflt = nil
	m.dfltSet = false
}

// Retain keeps only the entries for which keep returns true.
func (m *Map[V]) Retain(keep func(KeyRange, V) bool) {
	for k, v := range m.values {
		if !keep(NewValue(k), v) {
			delete(m.values, k)
		}
	}
	kept := m.ranges[:0]
	for _, e := range m.ranges {
		if keep(e.key, e.value) {
			kept = append(kept, e)
		}
	}
	m.ranges = kept
	if m.dfltSet && !keep(NewFull(), *m.dflt) {
		m.dflt = nil
		m.dfltSet = false
	}
}

// Entry pairs a KeyRange with its value, as returned by Iter.
type Entry[V any] struct {
	Range KeyRange
	Value V
}

// Iter returns every entry: exact values first, then ranges, then the
// default (if set) as a Full entry. The order within the value and range
// groups is unspecified.
func (m *Map[V]) Iter() []Entry[V] {
	out := make([]Entry[V], 0, len(m.values)+len(m.ranges)+1)
	for k, v := range m.values {
		out = append(out, Entry[V]{Range: NewValue(k), Value: v})
	}
	for _, e := range m.ranges {
		out = append(out, Entry[V]{Range: e.key, Value: e.value})
	}
	if m.dfltSet {
		out = append(out, Entry[V]{Range: NewFull(), Value: *m.dflt})
	}
	return out
}

// FindKey performs a reverse lookup: the first KeyRange whose stored value
// equals target, using eq for comparison. Used on write to recover the
// integer key that should be written into a by-field from a chosen
// variant's resolved size.
//
// Only a Value(k) hit is acceptable as the answer a caller can write back
// out verbatim; a range or default hit means "some value in this range
// produces this output," which the schema reverse-lookup user (the
// struct writer's back-patcher) must reject as ambiguous.
func (m *Map[V]) FindKey(target V, eq func(a, b V) bool) (KeyRange, bool) {
	for k, v := range m.values {
		if eq(v, target) {
			return NewValue(k), true
		}
	}
	for _, e := range m.ranges {
		if eq(e.value, target) {
			return e.key, true
		}
	}
	if m.dfltSet && eq(*m.dflt, target) {
		return NewFull(), true
	}
	return KeyRange{}, false
}

// MarshalJSON renders the map as a JSON object whose keys are KeyRange
// textual literals.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	raw := make(map[string]V, len(m.values)+len(m.ranges)+1)
	for _, e := range m.Iter() {
		raw[e.Range.String()] = e.Value
	}
	return json.Marshal(raw)
}

// UnmarshalJSON parses a JSON object whose keys are KeyRange textual
// literals.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	var raw map[string]V
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Clear()
	if m.values == nil {
		m.values = make(map[int64]V)
	}
	for k, v := range raw {
		r, err := Parse(k)
		if err != nil {
			return fmt.Errorf("keyrange: map key %q: %w", k, err)
		}
		m.Insert(r, v)
	}
	return nil
}
