// Package schema implements the schema language's type tree: the
// 21-variant Type sum type, Field, and their JSON (de)serialization.
//
// Grounded on original_source/src/ty/mod.rs's Type enum and field.rs's
// Field for the package-level doc-comment density and the pattern of one
// small file per concern. Go has no sum types, so Type is a single struct
// carrying every variant's parameters with a Kind discriminator, the
// common idiom this repo's corpus uses for protobuf-style oneofs.
package schema

import (
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/ZB94/bin2json/pkg/checksum"
	"github.com/ZB94/bin2json/pkg/convert"
	"github.com/ZB94/bin2json/pkg/keyrange"
	"github.com/ZB94/bin2json/pkg/secure"
)

// Kind names a Type variant. It doubles as the JSON "type" discriminator.
type Kind string

const (
	KindMagic     Kind = "Magic"
	KindBoolean   Kind = "Boolean"
	KindInt8      Kind = "Int8"
	KindInt16     Kind = "Int16"
	KindInt32     Kind = "Int32"
	KindInt64     Kind = "Int64"
	KindUint8     Kind = "Uint8"
	KindUint16    Kind = "Uint16"
	KindUint32    Kind = "Uint32"
	KindUint64    Kind = "Uint64"
	KindFloat32   Kind = "Float32"
	KindFloat64   Kind = "Float64"
	KindString    Kind = "String"
	KindBin       Kind = "Bin"
	KindStruct    Kind = "Struct"
	KindArray     Kind = "Array"
	KindEnum      Kind = "Enum"
	KindConverter Kind = "Converter"
	KindChecksum  Kind = "Checksum"
	KindEncrypt   Kind = "Encrypt"
	KindSign      Kind = "Sign"
)

// NaturalBytes returns the natural (default) byte width of an integer or
// float Kind, or 0 for kinds with no fixed natural width.
func (k Kind) NaturalBytes() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Field is a named member of a Struct: (name, type). Name is unique within
// its enclosing Struct, not globally.
type Field struct {
	Name string
	Type *Type
}

type fieldWire struct {
	Name string `json:"name"`
	*Type
}

// MarshalJSON flattens the field's name alongside its type's own
// discriminator and siblings, per field.rs's #[serde(flatten)].
func (f Field) MarshalJSON() ([]byte, error) {
	typeJSON, err := json.Marshal(f.Type)
	if err != nil {
		return nil, err
	}
	var typeMap map[string]json.RawMessage
	if err := json.Unmarshal(typeJSON, &typeMap); err != nil {
		return nil, err
	}
	typeMap["name"] = json.RawMessage(`"` + f.Name + `"`)
	return json.Marshal(typeMap)
}

// UnmarshalJSON implements the flattened field shape.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var ty Type
	if err := json.Unmarshal(data, &ty); err != nil {
		return fmt.Errorf("schema: field %q: %w", w.Name, err)
	}
	f.Name = w.Name
	f.Type = &ty
	return nil
}

// Type is the schema language's single recursive type-tree entity
// The zero value is invalid; construct with one of the
// variant constructors below.
type Type struct {
	Kind Kind

	// Magic
	Magic []byte

	// Boolean
	Bit bool

	// Int8..Int64, Uint8..Uint64
	Unit Unit

	// Float32, Float64
	Endian Endian

	// String, Bin; also the optional size on Struct/Array/Encrypt/Sign
	Size *BytesSize

	// Struct
	Fields []Field

	// Array
	Element *Type
	Length  *Length

	// Enum
	By      string
	EnumMap *keyrange.Map[*Type]

	// Converter
	Original    *Type
	OnReadConv  convert.Converter
	OnWriteConv convert.Converter

	// Checksum (and StartKey/EndKey shared with Sign)
	Method   checksum.Method
	StartKey string
	EndKey   string

	// Encrypt (and Sign shares OnReadKey/OnWriteKey)
	Inner      *Type
	OnReadKey  secure.Key
	OnWriteKey secure.Key
}

// MagicType returns a Magic type matching the literal bytes exactly.
func MagicType(magic []byte) *Type {
	cp := make([]byte, len(magic))
	copy(cp, magic)
	return &Type{Kind: KindMagic, Magic: cp}
}

// BooleanType returns a Boolean type. bit selects a 1-bit field instead of
// the default 1-byte field.
func BooleanType(bit bool) *Type { return &Type{Kind: KindBoolean, Bit: bit} }

func intType(k Kind, unit Unit) *Type { return &Type{Kind: k, Unit: unit} }

func Int8Type(unit Unit) *Type   { return intType(KindInt8, unit) }
func Int16Type(unit Unit) *Type  { return intType(KindInt16, unit) }
func Int32Type(unit Unit) *Type  { return intType(KindInt32, unit) }
func Int64Type(unit Unit) *Type  { return intType(KindInt64, unit) }
func Uint8Type(unit Unit) *Type  { return intType(KindUint8, unit) }
func Uint16Type(unit Unit) *Type { return intType(KindUint16, unit) }
func Uint32Type(unit Unit) *Type { return intType(KindUint32, unit) }
func Uint64Type(unit Unit) *Type { return intType(KindUint64, unit) }

// Float32Type returns a Float32 type with the given byte order.
func Float32Type(endian Endian) *Type { return &Type{Kind: KindFloat32, Endian: endian} }

// Float64Type returns a Float64 type with the given byte order.
func Float64Type(endian Endian) *Type { return &Type{Kind: KindFloat64, Endian: endian} }

// StringType returns a UTF-8 String type with the given optional size.
func StringType(size *BytesSize) *Type { return &Type{Kind: KindString, Size: size} }

// BinType returns an opaque Bin type with the given optional size.
func BinType(size *BytesSize) *Type { return &Type{Kind: KindBin, Size: size} }

// StructType returns a Struct type over the given ordered fields.
func StructType(fields []Field, size *BytesSize) *Type {
	return &Type{Kind: KindStruct, Fields: fields, Size: size}
}

// ArrayType returns an Array type of element, with optional length policy
// and overall size.
func ArrayType(element *Type, length *Length, size *BytesSize) *Type {
	return &Type{Kind: KindArray, Element: element, Length: length, Size: size}
}

// EnumType returns an Enum type dispatched by the sibling field by,
// through m. Only valid as a direct Struct field.
func EnumType(by string, m *keyrange.Map[*Type], size *BytesSize) *Type {
	return &Type{Kind: KindEnum, By: by, EnumMap: m, Size: size}
}

// ConverterType wraps original with read/write value converters.
func ConverterType(original *Type, onRead, onWrite convert.Converter) *Type {
	return &Type{Kind: KindConverter, Original: original, OnReadConv: onRead, OnWriteConv: onWrite}
}

// ChecksumType returns a Checksum type computed over [startKey, endKey).
// An empty endKey defaults to the checksum field itself. Only valid as a
// direct Struct field.
func ChecksumType(method checksum.Method, startKey, endKey string) *Type {
	return &Type{Kind: KindChecksum, Method: method, StartKey: startKey, EndKey: endKey}
}

// EncryptType wraps inner, encrypted with onWrite and decrypted with
// onRead.
func EncryptType(inner *Type, onRead, onWrite secure.Key, size *BytesSize) *Type {
	return &Type{Kind: KindEncrypt, Inner: inner, OnReadKey: onRead, OnWriteKey: onWrite, Size: size}
}

// SignType returns a Sign type computed over [startKey, endKey). Only
// valid as a direct Struct field.
func SignType(startKey, endKey string, onRead, onWrite secure.Key, size *BytesSize) *Type {
	return &Type{Kind: KindSign, StartKey: startKey, EndKey: endKey, OnReadKey: onRead, OnWriteKey: onWrite, Size: size}
}

func bytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func intsToBytes(ints []int) ([]byte, error) {
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("schema: byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// MarshalJSON renders the Type with a "type" discriminator and its
// variant-specific siblings flattened alongside it.
func (t *Type) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	switch t.Kind {
	case KindMagic:
		return json.Marshal(struct {
			Type  Kind  `json:"type"`
			Magic []int `json:"magic"`
		}{t.Kind, bytesToInts(t.Magic)})

	case KindBoolean:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			Bit  bool `json:"bit"`
		}{t.Kind, t.Bit})

	case KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64:
		return json.Marshal(struct {
			Type Kind `json:"type"`
			Unit Unit `json:"unit"`
		}{t.Kind, t.Unit})

	case KindFloat32, KindFloat64:
		return json.Marshal(struct {
			Type   Kind   `json:"type"`
			Endian Endian `json:"endian,omitempty"`
		}{t.Kind, t.Endian})

	case KindString, KindBin:
		return json.Marshal(struct {
			Type Kind       `json:"type"`
			Size *BytesSize `json:"size,omitempty"`
		}{t.Kind, t.Size})

	case KindStruct:
		return json.Marshal(struct {
			Type   Kind       `json:"type"`
			Fields []Field    `json:"fields"`
			Size   *BytesSize `json:"size,omitempty"`
		}{t.Kind, t.Fields, t.Size})

	case KindArray:
		return json.Marshal(struct {
			Type    Kind       `json:"type"`
			Element *Type      `json:"element_type"`
			Length  *Length    `json:"length,omitempty"`
			Size    *BytesSize `json:"size,omitempty"`
		}{t.Kind, t.Element, t.Length, t.Size})

	case KindEnum:
		return json.Marshal(struct {
			Type Kind                 `json:"type"`
			By   string               `json:"by"`
			Map  *keyrange.Map[*Type] `json:"map"`
			Size *BytesSize           `json:"size,omitempty"`
		}{t.Kind, t.By, t.EnumMap, t.Size})

	case KindConverter:
		return json.Marshal(struct {
			Type     Kind              `json:"type"`
			Original *Type             `json:"original_type"`
			OnRead   convert.Converter `json:"on_read,omitempty"`
			OnWrite  convert.Converter `json:"on_write,omitempty"`
		}{t.Kind, t.Original, t.OnReadConv, t.OnWriteConv})

	case KindChecksum:
		return json.Marshal(struct {
			Type     Kind            `json:"type"`
			Method   checksum.Method `json:"method"`
			StartKey string          `json:"start_key"`
			EndKey   string          `json:"end_key,omitempty"`
		}{t.Kind, t.Method, t.StartKey, t.EndKey})

	case KindEncrypt:
		return json.Marshal(struct {
			Type    Kind       `json:"type"`
			Inner   *Type      `json:"inner_type"`
			OnRead  secure.Key `json:"on_read"`
			OnWrite secure.Key `json:"on_write"`
			Size    *BytesSize `json:"size,omitempty"`
		}{t.Kind, t.Inner, t.OnReadKey, t.OnWriteKey, t.Size})

	case KindSign:
		return json.Marshal(struct {
			Type     Kind       `json:"type"`
			StartKey string     `json:"start_key"`
			EndKey   string     `json:"end_key,omitempty"`
			OnRead   secure.Key `json:"on_read"`
			OnWrite  secure.Key `json:"on_write"`
			Size     *BytesSize `json:"size,omitempty"`
		}{t.Kind, t.StartKey, t.EndKey, t.OnReadKey, t.OnWriteKey, t.Size})

	default:
		return nil, fmt.Errorf("schema: unknown type kind %q", t.Kind)
	}
}

// UnmarshalJSON parses the Type wire shape, dispatching on the "type"
// discriminator to the variant's own sibling fields.
func (t *Type) UnmarshalJSON(data []byte) error {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case KindMagic:
		var w struct {
			Magic []int `json:"magic"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		magic, err := intsToBytes(w.Magic)
		if err != nil {
			return err
		}
		*t = Type{Kind: KindMagic, Magic: magic}

	case KindBoolean:
		var w struct {
			Bit bool `json:"bit"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindBoolean, Bit: w.Bit}

	case KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64:
		var w struct {
			Unit Unit `json:"unit"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: head.Type, Unit: w.Unit}

	case KindFloat32, KindFloat64:
		var w struct {
			Endian Endian `json:"endian"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		if w.Endian == "" {
			w.Endian = Big
		}
		*t = Type{Kind: head.Type, Endian: w.Endian}

	case KindString, KindBin:
		var w struct {
			Size *BytesSize `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: head.Type, Size: w.Size}

	case KindStruct:
		var w struct {
			Fields []Field    `json:"fields"`
			Size   *BytesSize `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindStruct, Fields: w.Fields, Size: w.Size}

	case KindArray:
		var w struct {
			Element *Type      `json:"element_type"`
			Length  *Length    `json:"length"`
			Size    *BytesSize `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindArray, Element: w.Element, Length: w.Length, Size: w.Size}

	case KindEnum:
		var w struct {
			By   string               `json:"by"`
			Map  *keyrange.Map[*Type] `json:"map"`
			Size *BytesSize           `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindEnum, By: w.By, EnumMap: w.Map, Size: w.Size}

	case KindConverter:
		var w struct {
			Original *Type             `json:"original_type"`
			OnRead   convert.Converter `json:"on_read"`
			OnWrite  convert.Converter `json:"on_write"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindConverter, Original: w.Original, OnReadConv: w.OnRead, OnWriteConv: w.OnWrite}

	case KindChecksum:
		var w struct {
			Method   checksum.Method `json:"method"`
			StartKey string          `json:"start_key"`
			EndKey   string          `json:"end_key"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindChecksum, Method: w.Method, StartKey: w.StartKey, EndKey: w.EndKey}

	case KindEncrypt:
		var w struct {
			Inner   *Type      `json:"inner_type"`
			OnRead  secure.Key `json:"on_read"`
			OnWrite secure.Key `json:"on_write"`
			Size    *BytesSize `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindEncrypt, Inner: w.Inner, OnReadKey: w.OnRead, OnWriteKey: w.OnWrite, Size: w.Size}

	case KindSign:
		var w struct {
			StartKey string     `json:"start_key"`
			EndKey   string     `json:"end_key"`
			OnRead   secure.Key `json:"on_read"`
			OnWrite  secure.Key `json:"on_write"`
			Size     *BytesSize `json:"size"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*t = Type{Kind: KindSign, StartKey: w.StartKey, EndKey: w.EndKey, OnReadKey: w.OnRead, OnWriteKey: w.OnWrite, Size: w.Size}

	default:
		return fmt.Errorf("schema: unknown type discriminator %q", head.Type)
	}

	return nil
}
