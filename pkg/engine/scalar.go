package engine

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/sizing"
	"github.com/ZB94/bin2json/pkg/value"
)

// readRawBits reads width bits (width <= 64) honoring endian for
// byte-aligned widths wider than a byte: for Little endian the stream
// bytes are reversed before folding into a big-endian integer, since
// internal/bits.Buffer.ReadUint always folds MSB-first; grounded on
// original_source/src/ty/mod.rs's parse_numeric_field macro,
// which delegates byte order to deku's own Endian-aware primitive reads).
func readRawBits(data bits.Buffer, width int, endian schema.Endian) (uint64, bits.Buffer, error) {
	if width <= 0 || width > 64 {
		return 0, bits.Buffer{}, fmt.Errorf("engine: unsupported bit width %d", width)
	}
	if width%8 == 0 && width > 8 && endian == schema.Little {
		head, rest, err := data.SplitAt(width)
		if err != nil {
			return 0, bits.Buffer{}, schema.ErrIncomplete
		}
		b, err := head.AsBytes()
		if err != nil {
			return 0, bits.Buffer{}, err
		}
		var v uint64
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return v, rest, nil
	}
	v, rest, err := data.ReadUint(width)
	if err != nil {
		return 0, bits.Buffer{}, schema.ErrIncomplete
	}
	return v, rest, nil
}

// writeRawBits is the write-side inverse of readRawBits.
func writeRawBits(w *bits.Builder, raw uint64, width int, endian schema.Endian) {
	if width%8 == 0 && width > 8 && endian == schema.Little {
		n := width / 8
		be := make([]byte, n)
		v := raw
		for i := n - 1; i >= 0; i-- {
			be[i] = byte(v)
			v >>= 8
		}
		for i := 0; i < n/2; i++ {
			be[i], be[n-1-i] = be[n-1-i], be[i]
		}
		w.AppendBytes(be)
		return
	}
	w.AppendBits(raw, width)
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func readMagic(ty *schema.Type, data bits.Buffer) (value.Value, bits.Buffer, error) {
	head, rest, err := data.SplitAt(len(ty.Magic) * 8)
	if err != nil {
		return value.Value{}, bits.Buffer{}, schema.ErrIncomplete
	}
	got, err := head.AsBytes()
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	if !bytes.Equal(got, ty.Magic) {
		return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: expected %v, got %v", schema.ErrMagicMismatch, ty.Magic, got)
	}
	return value.NewBytes(got), rest, nil
}

// writeMagic always emits the literal, ignoring the input value entirely
// (lenient: a mismatched input value never blocks encoding the magic).
func writeMagic(ty *schema.Type) (bits.Buffer, error) {
	w := bits.NewBuilder(len(ty.Magic))
	w.AppendBytes(ty.Magic)
	return w.Buffer(), nil
}

func readBoolean(ty *schema.Type, data bits.Buffer) (value.Value, bits.Buffer, error) {
	width := 8
	if ty.Bit {
		width = 1
	}
	v, rest, err := readRawBits(data, width, schema.Big)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	return value.NewBool(v != 0), rest, nil
}

func writeBoolean(ty *schema.Type, v value.Value) (bits.Buffer, error) {
	b, ok := v.Bool()
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: Boolean", schema.ErrTypeError)
	}
	width := 8
	if ty.Bit {
		width = 1
	}
	w := bits.NewBuilder(1)
	var raw uint64
	if b {
		raw = 1
	}
	writeRawBits(w, raw, width, schema.Big)
	return w.Buffer(), nil
}

func isSignedInt(k schema.Kind) bool {
	switch k {
	case schema.KindInt8, schema.KindInt16, schema.KindInt32, schema.KindInt64:
		return true
	default:
		return false
	}
}

func readInteger(ty *schema.Type, data bits.Buffer) (value.Value, bits.Buffer, error) {
	natural := ty.Kind.NaturalBytes()
	width := ty.Unit.BitWidth(natural)
	v, rest, err := readRawBits(data, width, ty.Unit.Endian)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	if isSignedInt(ty.Kind) {
		if width < 64 && v&(uint64(1)<<(width-1)) != 0 {
			v |= ^uint64(0) << width
		}
		return value.NewInt(int64(v)), rest, nil
	}
	return value.NewUint(v), rest, nil
}

// writeInteger validates the JSON number against the variant's nominal
// (natural) capacity, then truncates to the narrower bit_width an explicit
// Unit.Size declares, discarding high bits — the write-side inverse of the
// sign/zero-extension readInteger performs.
func writeInteger(ty *schema.Type, v value.Value) (bits.Buffer, error) {
	natural := ty.Kind.NaturalBytes()
	naturalWidth := natural * 8
	width := ty.Unit.BitWidth(natural)
	mask := widthMask(width)

	var raw uint64
	if isSignedInt(ty.Kind) {
		iv, ok := v.AsInt64()
		if !ok {
			return bits.Buffer{}, fmt.Errorf("%w: %s", schema.ErrTypeError, ty.Kind)
		}
		if naturalWidth < 64 {
			max := int64(uint64(1)<<(naturalWidth-1)) - 1
			min := -max - 1
			if iv < min || iv > max {
				return bits.Buffer{}, fmt.Errorf("%w: %s value %d", schema.ErrValueOverflow, ty.Kind, iv)
			}
		}
		raw = uint64(iv) & mask
	} else {
		uv, ok := v.AsUint64()
		if !ok {
			return bits.Buffer{}, fmt.Errorf("%w: %s", schema.ErrTypeError, ty.Kind)
		}
		if naturalWidth < 64 && uv > widthMask(naturalWidth) {
			return bits.Buffer{}, fmt.Errorf("%w: %s value %d", schema.ErrValueOverflow, ty.Kind, uv)
		}
		raw = uv & mask
	}

	w := bits.NewBuilder(8)
	writeRawBits(w, raw, width, ty.Unit.Endian)
	return w.Buffer(), nil
}

func asFloat64(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.Float:
		f, _ := v.Float()
		return f, true
	case value.Int:
		i, _ := v.Int()
		return float64(i), true
	case value.Uint:
		u, _ := v.Uint()
		return float64(u), true
	default:
		return 0, false
	}
}

func readFloat(ty *schema.Type, data bits.Buffer) (value.Value, bits.Buffer, error) {
	width := 32
	if ty.Kind == schema.KindFloat64 {
		width = 64
	}
	raw, rest, err := readRawBits(data, width, ty.Endian)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	if width == 32 {
		return value.NewFloat(float64(math.Float32frombits(uint32(raw)))), rest, nil
	}
	return value.NewFloat(math.Float64frombits(raw)), rest, nil
}

func writeFloat(ty *schema.Type, v value.Value) (bits.Buffer, error) {
	f, ok := asFloat64(v)
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: %s", schema.ErrTypeError, ty.Kind)
	}

	w := bits.NewBuilder(8)
	if ty.Kind == schema.KindFloat32 {
		f32 := float32(f)
		if math.IsInf(float64(f32), 0) && !math.IsInf(f, 0) {
			return bits.Buffer{}, fmt.Errorf("%w: Float32 value %v", schema.ErrValueOverflow, f)
		}
		writeRawBits(w, uint64(math.Float32bits(f32)), 32, ty.Endian)
		return w.Buffer(), nil
	}
	writeRawBits(w, math.Float64bits(f), 64, ty.Endian)
	return w.Buffer(), nil
}

func readStringOrBin(ty *schema.Type, data bits.Buffer, lookup sizing.FieldLookup) (value.Value, bits.Buffer, error) {
	region, rest, err := resolveAndSplit(ty.Size, data, lookup)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	b, err := region.AsBytes()
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}
	if ty.Kind == schema.KindString {
		if !utf8.Valid(b) {
			return value.Value{}, bits.Buffer{}, schema.ErrUtf8
		}
		return value.NewString(string(b)), rest, nil
	}
	return value.NewBytes(b), rest, nil
}

// resolveAndSplit resolves size against data via pkg/sizing, then splits
// data into (region, everything after region) since sizing.Resolve only
// returns the region itself.
func resolveAndSplit(size *schema.BytesSize, data bits.Buffer, lookup sizing.FieldLookup) (region, rest bits.Buffer, err error) {
	region, err = sizing.Resolve(size, data, lookup)
	if err != nil {
		return bits.Buffer{}, bits.Buffer{}, err
	}
	_, rest, err = data.SplitAt(region.Len())
	if err != nil {
		return bits.Buffer{}, bits.Buffer{}, schema.ErrIncomplete
	}
	return region, rest, nil
}

func writeStringOrBin(ty *schema.Type, v value.Value) (bits.Buffer, error) {
	var b []byte
	switch {
	case ty.Kind == schema.KindString:
		s, ok := v.Str()
		if !ok {
			return bits.Buffer{}, fmt.Errorf("%w: String", schema.ErrTypeError)
		}
		b = []byte(s)
	default:
		bs, ok := v.ByteSlice()
		if !ok {
			return bits.Buffer{}, fmt.Errorf("%w: Bin", schema.ErrTypeError)
		}
		b = bs
	}

	if ty.Size != nil {
		switch ty.Size.Kind {
		case schema.SizeFixed:
			if len(b) != ty.Size.Fixed {
				return bits.Buffer{}, fmt.Errorf("%w: %s expected %d bytes, got %d", schema.ErrBytesSizeError, ty.Kind, ty.Size.Fixed, len(b))
			}
		case schema.SizeEndWith:
			if !bytes.HasSuffix(b, ty.Size.EndWith) {
				return bits.Buffer{}, fmt.Errorf("%w: %s does not end with sentinel", schema.ErrBytesSizeError, ty.Kind)
			}
		case schema.SizeBy, schema.SizeEnum:
			return bits.Buffer{}, fmt.Errorf("%w: %s with by/enum size written outside a struct", schema.ErrByError, ty.Kind)
		}
	}

	w := bits.NewBuilder(len(b))
	w.AppendBytes(b)
	return w.Buffer(), nil
}
