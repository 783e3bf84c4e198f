package schema

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// LengthKind distinguishes the two ways an Array's element count can be
// declared.
type LengthKind uint8

const (
	LengthFixed LengthKind = iota
	LengthBy
)

// Length is an Array's element-count specification: a fixed count, or a
// sibling field's value (only valid when the Array is a direct Struct
// field). A nil *Length means "read until the next element fails to
// decode, or the buffer is exhausted".
type Length struct {
	Kind LengthKind
	N    int
	By   string
}

// FixedLength returns a Length of exactly n elements.
func FixedLength(n int) Length { return Length{Kind: LengthFixed, N: n} }

// ByLength returns a Length read from the named sibling field.
func ByLength(field string) Length { return Length{Kind: LengthBy, By: field} }

// MarshalJSON renders Length untagged: an integer for Fixed, a string for
// By.
func (l Length) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LengthFixed:
		return json.Marshal(l.N)
	case LengthBy:
		return json.Marshal(l.By)
	default:
		return nil, fmt.Errorf("schema: unknown length kind %d", l.Kind)
	}
}

// UnmarshalJSON parses the untagged Length form.
func (l *Length) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		l.Kind = LengthFixed
		l.N = n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("schema: length must be an integer or a field name string: %w", err)
	}
	l.Kind = LengthBy
	l.By = s
	return nil
}
