// Package engine implements the bidirectional Type-tree walkers: Read
// decodes a byte stream against a schema.Type into a value.Value, Write
// does the reverse, and Convert/ReadAndConvert/ConvertAndWrite layer the
// Converter composition rules on top of both.
//
// Grounded on a reflect-driven Reader/Writer pair for the overall shape of
// a recursive, depth-limited tree walk with wrapped, path-carrying errors,
// and on original_source/src/ty/mod.rs, read_struct.rs, write_struct.rs,
// read_array.rs for the schema-specific dispatch and back-patching
// algorithms a reflect-driven walk doesn't need.
package engine

import (
	"fmt"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

// noFieldLookup is used wherever a Type resolves its own BytesSize/Length
// with no enclosing struct result to consult — a bare top-level call, or a
// nested reader/writer whose outer region has already been carved out by
// its caller.
func noFieldLookup(string) (value.Value, bool) { return value.Value{}, false }

// Read decodes data against ty and returns the decoded value along with
// whatever bytes remain unconsumed.
func Read(ty *schema.Type, data []byte, opts Options) (value.Value, []byte, error) {
	v, rest, err := readType(ty, bits.View(data), 0, opts)
	if err != nil {
		return value.Value{}, nil, err
	}
	residual, err := rest.AsBytes()
	if err != nil {
		return value.Value{}, nil, err
	}
	return v, residual, nil
}

// Write encodes v against ty.
func Write(ty *schema.Type, v value.Value, opts Options) ([]byte, error) {
	region, err := writeType(ty, v, 0, opts)
	if err != nil {
		return nil, err
	}
	return region.AsBytes()
}

// ReadAndConvert decodes data and applies every Converter node's on-read
// expression across the resulting tree.
func ReadAndConvert(ty *schema.Type, data []byte, opts Options) (value.Value, []byte, error) {
	v, rest, err := Read(ty, data, opts)
	if err != nil {
		return value.Value{}, nil, err
	}
	cv, err := Convert(ty, v, true)
	if err != nil {
		return value.Value{}, nil, err
	}
	return cv, rest, nil
}

// ConvertAndWrite applies every Converter node's on-write expression across
// v, then encodes the result against ty.
func ConvertAndWrite(ty *schema.Type, v value.Value, opts Options) ([]byte, error) {
	raw, err := Convert(ty, v, false)
	if err != nil {
		return nil, err
	}
	return Write(ty, raw, opts)
}

// readType is the generic recursive dispatcher: every Read-side component
// (scalar.go, struct.go, array.go) funnels back through here for its
// children, so MaxDepth is enforced in exactly one place.
func readType(ty *schema.Type, data bits.Buffer, depth int, opts Options) (value.Value, bits.Buffer, error) {
	if opts.Limits.MaxDepth > 0 && depth > opts.Limits.MaxDepth {
		return value.Value{}, bits.Buffer{}, ErrMaxDepthExceeded
	}

	switch ty.Kind {
	case schema.KindMagic:
		return readMagic(ty, data)
	case schema.KindBoolean:
		return readBoolean(ty, data)
	case schema.KindInt8, schema.KindInt16, schema.KindInt32, schema.KindInt64,
		schema.KindUint8, schema.KindUint16, schema.KindUint32, schema.KindUint64:
		return readInteger(ty, data)
	case schema.KindFloat32, schema.KindFloat64:
		return readFloat(ty, data)
	case schema.KindString, schema.KindBin:
		return readStringOrBin(ty, data, noFieldLookup)
	case schema.KindStruct:
		return readStruct(ty, data, depth, opts)
	case schema.KindArray:
		return readArray(ty, data, depth, opts)
	case schema.KindConverter:
		return readType(ty.Original, data, depth+1, opts)
	case schema.KindEncrypt:
		return readEncryptTop(ty, data, depth, opts)
	case schema.KindEnum, schema.KindChecksum, schema.KindSign:
		return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: %s is only meaningful as a direct struct field", schema.ErrByKeyNotFound, ty.Kind)
	default:
		return value.Value{}, bits.Buffer{}, fmt.Errorf("engine: unknown type kind %q", ty.Kind)
	}
}

func readEncryptTop(ty *schema.Type, data bits.Buffer, depth int, opts Options) (value.Value, bits.Buffer, error) {
	region, rest, err := resolveAndSplit(ty.Size, data, noFieldLookup)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	ciphertext, err := region.AsBytes()
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	plaintext, err := ty.OnReadKey.Decrypt(ciphertext)
	if err != nil {
		return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: %v", schema.ErrDecryptError, err)
	}
	v, _, err := readType(ty.Inner, bits.View(plaintext), depth+1, opts)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	return v, rest, nil
}

// writeType is the generic recursive dispatcher for Write.
func writeType(ty *schema.Type, v value.Value, depth int, opts Options) (bits.Buffer, error) {
	if opts.Limits.MaxDepth > 0 && depth > opts.Limits.MaxDepth {
		return bits.Buffer{}, ErrMaxDepthExceeded
	}

	switch ty.Kind {
	case schema.KindMagic:
		return writeMagic(ty)
	case schema.KindBoolean:
		return writeBoolean(ty, v)
	case schema.KindInt8, schema.KindInt16, schema.KindInt32, schema.KindInt64,
		schema.KindUint8, schema.KindUint16, schema.KindUint32, schema.KindUint64:
		return writeInteger(ty, v)
	case schema.KindFloat32, schema.KindFloat64:
		return writeFloat(ty, v)
	case schema.KindString, schema.KindBin:
		return writeStringOrBin(ty, v)
	case schema.KindStruct:
		region, err := writeStruct(ty, v, depth, opts)
		if err != nil {
			return bits.Buffer{}, err
		}
		return applyOuterSize(ty, region)
	case schema.KindArray:
		region, err := writeArray(ty, v, depth, opts)
		if err != nil {
			return bits.Buffer{}, err
		}
		return applyOuterSize(ty, region)
	case schema.KindEncrypt:
		region, err := writeEncrypt(ty, v, depth, opts)
		if err != nil {
			return bits.Buffer{}, err
		}
		return applyOuterSize(ty, region)
	case schema.KindConverter:
		return writeType(ty.Original, v, depth+1, opts)
	case schema.KindEnum, schema.KindChecksum, schema.KindSign:
		return bits.Buffer{}, fmt.Errorf("%w: %s written outside a struct", schema.ErrByError, ty.Kind)
	default:
		return bits.Buffer{}, fmt.Errorf("engine: unknown type kind %q", ty.Kind)
	}
}

func writeEncrypt(ty *schema.Type, v value.Value, depth int, opts Options) (bits.Buffer, error) {
	inner, err := writeType(ty.Inner, v, depth+1, opts)
	if err != nil {
		return bits.Buffer{}, err
	}
	plaintext, err := inner.AsBytes()
	if err != nil {
		return bits.Buffer{}, err
	}
	ciphertext, err := ty.OnWriteKey.Encrypt(plaintext)
	if err != nil {
		return bits.Buffer{}, fmt.Errorf("%w: %v", schema.ErrEncryptError, err)
	}
	w := bits.NewBuilder(len(ciphertext))
	w.AppendBytes(ciphertext)
	return w.Buffer(), nil
}

// Convert walks ty and v together, applying every Converter node's
// OnReadConv (isRead) or OnWriteConv (!isRead) expression, recursing into
// Struct fields, Array elements, and Encrypt's inner type.
// On the read direction a node's own conversion applies after its children
// have already been converted; on the write direction it applies before,
// since write composition un-converts top-down before the raw encode walks
// bottom-up.
func Convert(ty *schema.Type, v value.Value, isRead bool) (value.Value, error) {
	switch ty.Kind {
	case schema.KindConverter:
		conv := ty.OnWriteConv
		if isRead {
			conv = ty.OnReadConv
		}
		if isRead {
			inner, err := Convert(ty.Original, v, isRead)
			if err != nil {
				return value.Value{}, err
			}
			out, err := conv.Apply(inner)
			if err != nil {
				return value.Value{}, fmt.Errorf("%w: %w", schema.ErrEvalExpr, err)
			}
			return out, nil
		}
		out, err := conv.Apply(v)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %w", schema.ErrEvalExpr, err)
		}
		return Convert(ty.Original, out, isRead)

	case schema.KindStruct:
		obj, ok := v.ObjVal()
		if !ok {
			return v, nil
		}
		out := value.NewObj()
		for _, f := range ty.Fields {
			fv, has := obj.Get(f.Name)
			if !has {
				continue
			}
			childType := f.Type
			if childType.Kind == schema.KindEnum {
				if keyVal, ok := obj.Get(childType.By); ok {
					if key, ok := keyVal.AsInt64(); ok {
						if inner, ok := childType.EnumMap.Get(key); ok {
							childType = inner
						}
					}
				}
			}
			if childType.Kind == schema.KindChecksum || childType.Kind == schema.KindSign {
				out.Set(f.Name, fv)
				continue
			}
			cv, err := Convert(childType, fv, isRead)
			if err != nil {
				return value.Value{}, err
			}
			out.Set(f.Name, cv)
		}
		return value.NewObject(out), nil

	case schema.KindArray:
		items, ok := v.Items()
		if !ok {
			return v, nil
		}
		out := make([]value.Value, len(items))
		for i, it := range items {
			cv, err := Convert(ty.Element, it, isRead)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = cv
		}
		return value.NewArray(out...), nil

	case schema.KindEncrypt:
		return Convert(ty.Inner, v, isRead)

	default:
		return v, nil
	}
}
