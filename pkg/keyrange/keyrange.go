// Package keyrange implements the integer key-range literal and the
// range-keyed lookup map used throughout the schema: Enum dispatch,
// BytesSize::Enum, and any other place a sibling field's integer value
// selects among alternatives.
//
// Grounded on the original Rust implementation's range.rs textual grammar
// (value / half-open / closed / open-ended / full / explicit set) and on
// a small hand-rolled scanner for the parsing style.
package keyrange

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which of the eight literal shapes a KeyRange holds.
type Kind uint8

const (
	// Value matches exactly one integer.
	Value Kind = iota
	// HalfOpen matches [Start, End).
	HalfOpen
	// Closed matches [Start, End].
	Closed
	// From matches [Start, +inf).
	From
	// To matches (-inf, End).
	To
	// ToInclusive matches (-inf, End].
	ToInclusive
	// Full matches every integer.
	Full
	// Set matches an explicit, unordered list of integers.
	Set
)

// KeyRange is an integer key-range literal: a single value, a half-open,
// closed, or open-ended interval, the full range, or an explicit set.
//
// The zero value is a Value range matching exactly 0 (every KeyRange is
// usable as soon as it's constructed via one of the package helpers below).
type KeyRange struct {
	kind  Kind
	start int64 // valid for Value, HalfOpen, Closed, From
	end   int64 // valid for HalfOpen, Closed, To, ToInclusive
	set   []int64
}

// NewValue returns a KeyRange matching exactly v.
func NewValue(v int64) KeyRange { return KeyRange{kind: Value, start: v} }

// NewHalfOpen returns a KeyRange matching [start, end).
func NewHalfOpen(start, end int64) KeyRange { return KeyRange{kind: HalfOpen, start: start, end: end} }

// NewClosed returns a KeyRange matching [start, end].
func NewClosed(start, end int64) KeyRange { return KeyRange{kind: Closed, start: start, end: end} }

// NewFrom returns a KeyRange matching [start, +inf).
func NewFrom(start int64) KeyRange { return KeyRange{kind: From, start: start} }

// NewTo returns a KeyRange matching (-inf, end).
func NewTo(end int64) KeyRange { return KeyRange{kind: To, end: end} }

// NewToInclusive returns a KeyRange matching (-inf, end].
func NewToInclusive(end int64) KeyRange { return KeyRange{kind: ToInclusive, end: end} }

// NewFull returns the KeyRange matching every integer.
func NewFull() KeyRange { return KeyRange{kind: Full} }

// NewSet returns a KeyRange matching exactly the given values.
func NewSet(values []int64) KeyRange {
	set := make([]int64, len(values))
	copy(set, values)
	return KeyRange{kind: Set, set: set}
}

// Kind reports which literal shape this KeyRange holds.
func (r KeyRange) Kind() Kind { return r.kind }

// Int64 returns the exact integer r matches, if r is a Value range. Used by
// the struct writer's enum-size back-patcher to recover the dispatch key
// once FindKey has located the matching entry.
func (r KeyRange) Int64() (int64, bool) {
	if r.kind != Value {
		return 0, false
	}
	return r.start, true
}

// Contains reports whether key falls within the range.
func (r KeyRange) Contains(key int64) bool {
	switch r.kind {
	case Value:
		return key == r.start
	case HalfOpen:
		return key >= r.start && key < r.end
	case Closed:
		return key >= r.start && key <= r.end
	case From:
		return key >= r.start
	case To:
		return key < r.end
	case ToInclusive:
		return key <= r.end
	case Full:
		return true
	case Set:
		for _, v := range r.set {
			if v == key {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the KeyRange in its textual form:
// "n", "a..b", "a..=b", "..b", "..=b", "a..", "..", or "[v1,v2,...]".
func (r KeyRange) String() string {
	switch r.kind {
	case Value:
		return strconv.FormatInt(r.start, 10)
	case HalfOpen:
		return fmt.Sprintf("%d..%d", r.start, r.end)
	case Closed:
		return fmt.Sprintf("%d..=%d", r.start, r.end)
	case From:
		return fmt.Sprintf("%d..", r.start)
	case To:
		return fmt.Sprintf("..%d", r.end)
	case ToInclusive:
		return fmt.Sprintf("..=%d", r.end)
	case Full:
		return ".."
	case Set:
		parts := make([]string, len(r.set))
		for i, v := range r.set {
			parts[i] = strconv.FormatInt(v, 10)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

// Parse parses the textual form of a KeyRange.
func Parse(s string) (KeyRange, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		if strings.TrimSpace(inner) == "" {
			return KeyRange{}, fmt.Errorf("keyrange: empty set literal %q", s)
		}
		parts := strings.Split(inner, ",")
		values := make([]int64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
			if err != nil {
				return KeyRange{}, fmt.Errorf("keyrange: invalid set literal %q: %w", s, err)
			}
			values[i] = v
		}
		return NewSet(values), nil
	}

	left, right, ok := strings.Cut(s, "..")
	if !ok {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return KeyRange{}, fmt.Errorf("keyrange: invalid literal %q: %w", s, err)
		}
		return NewValue(v), nil
	}

	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	var start, end *int64
	if left != "" {
		v, err := strconv.ParseInt(left, 10, 64)
		if err != nil {
			return KeyRange{}, fmt.Errorf("keyrange: invalid range start %q: %w", s, err)
		}
		start = &v
	}

	inclusive := strings.HasPrefix(right, "=")
	if inclusive {
		right = strings.TrimSpace(right[1:])
	}
	if right != "" {
		v, err := strconv.ParseInt(right, 10, 64)
		if err != nil {
			return KeyRange{}, fmt.Errorf("keyrange: invalid range end %q: %w", s, err)
		}
		end = &v
	}

	switch {
	case start != nil && end != nil && !inclusive:
		return NewHalfOpen(*start, *end), nil
	case start != nil && end != nil && inclusive:
		return NewClosed(*start, *end), nil
	case start != nil && end == nil && !inclusive:
		return NewFrom(*start), nil
	case start == nil && end == nil && !inclusive:
		return NewFull(), nil
	case start == nil && end != nil && !inclusive:
		return NewTo(*end), nil
	case start == nil && end != nil && inclusive:
		return NewToInclusive(*end), nil
	default:
		return KeyRange{}, fmt.Errorf("keyrange: malformed range literal %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r KeyRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *KeyRange) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
