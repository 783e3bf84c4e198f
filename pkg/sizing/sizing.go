// Package sizing implements the BytesSize resolver: given a BytesSize and
// the fields already decoded in the
// enclosing struct, compute the bit region a String/Bin/Struct/Array/
// Encrypt/Sign field occupies.
//
// Grounded on original_source/src/ty/utils.rs::get_data_by_size, which
// performs the same four-way dispatch (All/Fixed/EndWith/By-or-Enum)
// against a bit slice and an already-decoded field map.
package sizing

import (
	"fmt"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

// FieldLookup resolves a sibling field's already-decoded value by name,
// used to satisfy BytesSize::By and BytesSize::Enum. The struct reader
// supplies this from its running result object.
type FieldLookup func(name string) (value.Value, bool)

// Resolve returns the bit region source occupies per size. A nil size, or
// one with Kind schema.SizeAll, resolves to the entire source.
func Resolve(size *schema.BytesSize, source bits.Buffer, lookup FieldLookup) (bits.Buffer, error) {
	if size == nil {
		return source, nil
	}

	switch size.Kind {
	case schema.SizeAll:
		return source, nil

	case schema.SizeFixed:
		head, _, err := source.SplitAt(size.Fixed * 8)
		if err != nil {
			return bits.Buffer{}, fmt.Errorf("%w: fixed size %d bytes", schema.ErrIncomplete, size.Fixed)
		}
		return head, nil

	case schema.SizeEndWith:
		return resolveEndWith(size.EndWith, source)

	case schema.SizeBy:
		n, err := resolveByTarget(size.By, lookup, false)
		if err != nil {
			return bits.Buffer{}, err
		}
		head, _, err := source.SplitAt(int(n) * 8)
		if err != nil {
			return bits.Buffer{}, fmt.Errorf("%w: by-field %q requested %d bytes", schema.ErrIncomplete, size.By, n)
		}
		return head, nil

	case schema.SizeEnum:
		key, err := resolveByTarget(size.EnumBy, lookup, true)
		if err != nil {
			return bits.Buffer{}, err
		}
		n, ok := size.EnumMap.Get(int64(key))
		if !ok {
			return bits.Buffer{}, fmt.Errorf("%w: %d", schema.ErrEnumKeyNotFound, key)
		}
		head, _, err := source.SplitAt(n * 8)
		if err != nil {
			return bits.Buffer{}, fmt.Errorf("%w: enum-sized field %q requested %d bytes", schema.ErrIncomplete, size.EnumBy, n)
		}
		return head, nil

	default:
		return bits.Buffer{}, fmt.Errorf("sizing: unknown bytes size kind %d", size.Kind)
	}
}

func resolveEndWith(sentinel []byte, source bits.Buffer) (bits.Buffer, error) {
	if len(sentinel) == 0 {
		return bits.Buffer{}, fmt.Errorf("sizing: empty end-with sentinel")
	}

	acc := make([]byte, 0, len(sentinel)+8)
	rest := source
	for {
		if rest.Len() < 8 {
			return bits.Buffer{}, fmt.Errorf("%w: end-with sentinel %v not found", schema.ErrEndNotFound, sentinel)
		}
		var head bits.Buffer
		var err error
		head, rest, err = rest.SplitAt(8)
		if err != nil {
			return bits.Buffer{}, fmt.Errorf("%w", schema.ErrIncomplete)
		}
		b, err := head.AsBytes()
		if err != nil {
			return bits.Buffer{}, err
		}
		acc = append(acc, b[0])
		if endsWith(acc, sentinel) {
			region, _, err := source.SplitAt(len(acc) * 8)
			if err != nil {
				return bits.Buffer{}, fmt.Errorf("%w", schema.ErrIncomplete)
			}
			return region, nil
		}
	}
}

func endsWith(data, sentinel []byte) bool {
	if len(data) < len(sentinel) {
		return false
	}
	tail := data[len(data)-len(sentinel):]
	for i := range sentinel {
		if tail[i] != sentinel[i] {
			return false
		}
	}
	return true
}

// resolveByTarget looks up fieldName in lookup and coerces it to an
// integer: unsigned for plain By sizes, signed for Enum sizes (which probe
// a KeyRangeMap that may contain negative keys).
func resolveByTarget(fieldName string, lookup FieldLookup, signed bool) (int64, error) {
	v, ok := lookup(fieldName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, fieldName)
	}
	if signed {
		n, ok := v.AsInt64()
		if !ok {
			return 0, fmt.Errorf("%w: %q", schema.ErrLengthTargetIsInvalid, fieldName)
		}
		return n, nil
	}
	n, ok := v.AsUint64()
	if !ok {
		return 0, fmt.Errorf("%w: %q", schema.ErrLengthTargetIsInvalid, fieldName)
	}
	return int64(n), nil
}
