package schema

import (
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/ZB94/bin2json/pkg/keyrange"
)

// BytesSizeKind distinguishes BytesSize's four ways of declaring a region's
// byte length.
type BytesSizeKind uint8

const (
	// SizeAll means "the entire remaining input/output", written
	// explicitly as the JSON string "all". A nil *BytesSize (the field
	// omitted from a Type) means the same thing to the sizing resolver;
	// SizeAll exists so a schema can spell it out, matching the original
	// source's explicit BytesSize::All variant.
	SizeAll BytesSizeKind = iota
	// SizeFixed is a literal byte count.
	SizeFixed
	// SizeEndWith reads until the accumulated bytes end with a sentinel.
	SizeEndWith
	// SizeBy reads a sibling field's integer value as the byte count.
	SizeBy
	// SizeEnum reads a sibling field's integer value and looks up the byte
	// count in a KeyRangeMap.
	SizeEnum
)

// BytesSize declares how many bytes a String, Bin, Struct, Array, Encrypt,
// or Sign region occupies.
type BytesSize struct {
	Kind    BytesSizeKind
	Fixed   int
	EndWith []byte
	By      string
	EnumBy  string
	EnumMap *keyrange.Map[int]
}

// BytesSizeAll is the explicit "entire remaining input/output" BytesSize.
var BytesSizeAll = BytesSize{Kind: SizeAll}

// FixedSize returns a BytesSize of exactly n bytes.
func FixedSize(n int) BytesSize { return BytesSize{Kind: SizeFixed, Fixed: n} }

// EndWithSize returns a BytesSize that reads until the bytes end with
// sentinel.
func EndWithSize(sentinel []byte) BytesSize {
	cp := make([]byte, len(sentinel))
	copy(cp, sentinel)
	return BytesSize{Kind: SizeEndWith, EndWith: cp}
}

// BySize returns a BytesSize read from the named sibling field.
func BySize(field string) BytesSize { return BytesSize{Kind: SizeBy, By: field} }

// EnumSize returns a BytesSize dispatched by the named sibling field
// through m.
func EnumSize(field string, m *keyrange.Map[int]) BytesSize {
	return BytesSize{Kind: SizeEnum, EnumBy: field, EnumMap: m}
}

// MarshalJSON renders BytesSize untagged: "all" for
// SizeAll, an integer for Fixed, an array of bytes for EndWith, a string
// for By, or an object with "by"/"map" for Enum.
func (b BytesSize) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case SizeAll:
		return json.Marshal("all")
	case SizeFixed:
		return json.Marshal(b.Fixed)
	case SizeEndWith:
		ints := make([]int, len(b.EndWith))
		for i, v := range b.EndWith {
			ints[i] = int(v)
		}
		return json.Marshal(ints)
	case SizeBy:
		return json.Marshal(b.By)
	case SizeEnum:
		m := b.EnumMap
		if m == nil {
			m = keyrange.New[int]()
		}
		return json.Marshal(struct {
			By  string             `json:"by"`
			Map *keyrange.Map[int] `json:"map"`
		}{By: b.EnumBy, Map: m})
	default:
		return nil, fmt.Errorf("schema: unknown bytes size kind %d", b.Kind)
	}
}

// UnmarshalJSON parses the untagged BytesSize form by sniffing the JSON
// value's shape.
func (b *BytesSize) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		b.Kind = SizeFixed
		b.Fixed = n
		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err == nil {
		end := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return fmt.Errorf("schema: bytes size end-with entry %d out of byte range", v)
			}
			end[i] = byte(v)
		}
		b.Kind = SizeEndWith
		b.EndWith = end
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "all" {
			b.Kind = SizeAll
		} else {
			b.Kind = SizeBy
			b.By = s
		}
		return nil
	}

	var obj struct {
		By  string             `json:"by"`
		Map *keyrange.Map[int] `json:"map"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("schema: bytes size must be \"all\", an integer, a byte array, a field name, or an enum object: %w", err)
	}
	if obj.By == "" {
		return fmt.Errorf("schema: enum bytes size missing \"by\"")
	}
	b.Kind = SizeEnum
	b.EnumBy = obj.By
	b.EnumMap = obj.Map
	return nil
}
