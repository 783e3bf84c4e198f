package engine

import (
	"fmt"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

// readArray implements array reads: a Length::Fixed(n) array reads exactly
// n elements (incomplete input is an error); an absent Length reads
// elements until the element type fails to decode, which may legitimately
// yield zero elements; Length::By must already have been resolved to Fixed
// by the enclosing struct field normalization (readField) — seeing one
// here is a schema error, not something this reader resolves itself.
func readArray(ty *schema.Type, data bits.Buffer, depth int, opts Options) (value.Value, bits.Buffer, error) {
	region, rest, err := resolveAndSplit(ty.Size, data, noFieldLookup)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}

	var items []value.Value
	cur := region

	if ty.Length == nil {
		items = []value.Value{}
		for {
			v, tail, err := readType(ty.Element, cur, depth+1, opts)
			if err != nil {
				break
			}
			items = append(items, v)
			cur = tail
		}
		if ty.Size == nil {
			// No outer Size means region is the entire remaining buffer, so
			// whatever the element loop didn't consume is still live input,
			// not trailing padding to discard.
			return value.NewArray(items...), cur, nil
		}
		return value.NewArray(items...), rest, nil
	}

	switch ty.Length.Kind {
	case schema.LengthFixed:
		items = make([]value.Value, 0, ty.Length.N)
		for i := 0; i < ty.Length.N; i++ {
			v, tail, err := readType(ty.Element, cur, depth+1, opts)
			if err != nil {
				return value.Value{}, bits.Buffer{}, withReadField(err, fmt.Sprintf("[%d]", i), region.Len()-cur.Len())
			}
			items = append(items, v)
			cur = tail
		}
		return value.NewArray(items...), rest, nil
	case schema.LengthBy:
		return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: array length by-field left unresolved", schema.ErrByKeyNotFound)
	default:
		return value.Value{}, bits.Buffer{}, fmt.Errorf("engine: unknown length kind")
	}
}

// writeArray writes each element in order; a
// Length::Fixed(n) constraint requires an exact element count, and a
// Length::By constraint reaching here (rather than being stripped by the
// enclosing struct field's writeNormalField) means the array was written
// outside a struct, which is an error.
func writeArray(ty *schema.Type, v value.Value, depth int, opts Options) (bits.Buffer, error) {
	items, ok := v.Items()
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: Array", schema.ErrTypeError)
	}

	if ty.Length != nil {
		switch ty.Length.Kind {
		case schema.LengthFixed:
			if len(items) != ty.Length.N {
				return bits.Buffer{}, fmt.Errorf("%w: expected %d elements, got %d", schema.ErrLengthError, ty.Length.N, len(items))
			}
		case schema.LengthBy:
			return bits.Buffer{}, fmt.Errorf("%w: array length by-field written outside a struct", schema.ErrByError)
		}
	}

	w := bits.NewBuilder(8 * len(items))
	for i, item := range items {
		region, err := writeType(ty.Element, item, depth+1, opts)
		if err != nil {
			return bits.Buffer{}, withWriteField(err, fmt.Sprintf("[%d]", i))
		}
		w.AppendBuffer(region)
	}
	return w.Buffer(), nil
}
