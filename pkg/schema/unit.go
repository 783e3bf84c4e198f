package schema

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// Endian is the byte order of a numeric field.
type Endian string

const (
	Big    Endian = "Big"
	Little Endian = "Little"
)

func (e Endian) valid() bool { return e == Big || e == Little }

// SizeKind distinguishes whether a Size is expressed in bits or bytes.
type SizeKind uint8

const (
	SizeBits SizeKind = iota
	SizeBytes
)

// Size is an explicit bit or byte width override for a numeric Unit.
type Size struct {
	Kind  SizeKind
	Value int
}

// Bits returns a Size of n bits.
func Bits(n int) Size { return Size{Kind: SizeBits, Value: n} }

// Bytes returns a Size of n bytes.
func Bytes(n int) Size { return Size{Kind: SizeBytes, Value: n} }

// InBits returns the size expressed in bits.
func (s Size) InBits() int {
	if s.Kind == SizeBytes {
		return s.Value * 8
	}
	return s.Value
}

type sizeWire struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// MarshalJSON renders the size as {"type":"Bits"|"Bytes","value":n}, per
// the Unit.size wire shape.
func (s Size) MarshalJSON() ([]byte, error) {
	w := sizeWire{Value: s.Value}
	switch s.Kind {
	case SizeBits:
		w.Type = "Bits"
	case SizeBytes:
		w.Type = "Bytes"
	default:
		return nil, fmt.Errorf("schema: unknown size kind %d", s.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the {"type":...,"value":...} shape.
func (s *Size) UnmarshalJSON(data []byte) error {
	var w sizeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "Bits":
		s.Kind = SizeBits
	case "Bytes":
		s.Kind = SizeBytes
	default:
		return fmt.Errorf("schema: unknown size type %q", w.Type)
	}
	s.Value = w.Value
	return nil
}

// Unit configures a numeric field's byte order and, optionally, an
// explicit bit/byte width narrower or wider than the variant's natural
// size.
type Unit struct {
	Endian Endian
	Size   *Size
}

// BigEndian returns a Unit with the natural width, big-endian.
func BigEndian() Unit { return Unit{Endian: Big} }

// LittleEndian returns a Unit with the natural width, little-endian.
func LittleEndian() Unit { return Unit{Endian: Little} }

type unitWire struct {
	Endian Endian `json:"endian"`
	Size   *Size  `json:"size,omitempty"`
}

// MarshalJSON implements json.Marshaler, defaulting an empty Endian to Big
// to match the Rust source's Default impl.
func (u Unit) MarshalJSON() ([]byte, error) {
	e := u.Endian
	if e == "" {
		e = Big
	}
	return json.Marshal(unitWire{Endian: e, Size: u.Size})
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var w unitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Endian == "" {
		w.Endian = Big
	}
	if !w.Endian.valid() {
		return fmt.Errorf("schema: unknown endian %q", w.Endian)
	}
	u.Endian = w.Endian
	u.Size = w.Size
	return nil
}

// BitWidth returns the effective bit width of the unit given the variant's
// natural byte width, honoring an explicit Size override.
func (u Unit) BitWidth(naturalBytes int) int {
	if u.Size == nil {
		return naturalBytes * 8
	}
	return u.Size.InBits()
}
