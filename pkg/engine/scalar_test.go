package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

func TestReadWriteMagic(t *testing.T) {
	ty := schema.MagicType([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	region, err := writeType(ty, value.NewNull(), 0, DefaultOptions)
	require.NoError(t, err)
	data, err := region.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)

	v, rest, err := readType(ty, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	require.True(t, rest.Empty())
	b, ok := v.ByteSlice()
	require.True(t, ok)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, b)
}

func TestReadMagicMismatch(t *testing.T) {
	ty := schema.MagicType([]byte{0xDE, 0xAD})
	_, _, err := readType(ty, bits.View([]byte{0x00, 0x00}), 0, DefaultOptions)
	require.ErrorIs(t, err, schema.ErrMagicMismatch)
}

func TestReadWriteBoolean(t *testing.T) {
	ty := schema.BooleanType(false)

	region, err := writeType(ty, value.NewBool(true), 0, DefaultOptions)
	require.NoError(t, err)
	data, err := region.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)

	v, _, err := readType(ty, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	b, ok := v.Bool()
	require.True(t, ok)
	require.True(t, b)
}

func TestReadWriteBooleanBit(t *testing.T) {
	ty := schema.BooleanType(true)
	region, err := writeType(ty, value.NewBool(true), 0, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, 1, region.Len())
}

func TestReadWriteIntegerRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		ty   *schema.Type
		v    value.Value
		want []byte
	}{
		{"int8", schema.Int8Type(schema.BigEndian()), value.NewInt(-1), []byte{0xFF}},
		{"uint8", schema.Uint8Type(schema.BigEndian()), value.NewUint(200), []byte{200}},
		{"int16-big", schema.Int16Type(schema.BigEndian()), value.NewInt(-2), []byte{0xFF, 0xFE}},
		{"uint32-little", schema.Uint32Type(schema.LittleEndian()), value.NewUint(0x01020304), []byte{0x04, 0x03, 0x02, 0x01}},
		{"int64-big", schema.Int64Type(schema.BigEndian()), value.NewInt(1), append(make([]byte, 7), 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			region, err := writeType(tc.ty, tc.v, 0, DefaultOptions)
			require.NoError(t, err)
			data, err := region.AsBytes()
			require.NoError(t, err)
			require.Equal(t, tc.want, data)

			v, rest, err := readType(tc.ty, bits.View(data), 0, DefaultOptions)
			require.NoError(t, err)
			require.True(t, rest.Empty())
			require.Equal(t, tc.v.Kind(), v.Kind())
		})
	}
}

func TestWriteIntegerOverflow(t *testing.T) {
	ty := schema.Int8Type(schema.BigEndian())
	_, err := writeType(ty, value.NewInt(200), 0, DefaultOptions)
	require.ErrorIs(t, err, schema.ErrValueOverflow)
}

func TestWriteIntegerNarrowBitWidth(t *testing.T) {
	unit := schema.Unit{Endian: schema.Big, Size: sizePtr(schema.Bits(4))}
	ty := schema.Uint8Type(unit)

	region, err := writeType(ty, value.NewUint(0xFF), 0, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, 4, region.Len())
	v, _, err := region.ReadUint(4)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0F), v)
}

func sizePtr(s schema.Size) *schema.Size { return &s }

func TestReadWriteFloat(t *testing.T) {
	ty32 := schema.Float32Type(schema.Big)
	region, err := writeType(ty32, value.NewFloat(1.5), 0, DefaultOptions)
	require.NoError(t, err)
	data, err := region.AsBytes()
	require.NoError(t, err)
	v, _, err := readType(ty32, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	f, ok := v.Float()
	require.True(t, ok)
	require.Equal(t, float64(1.5), f)

	ty64 := schema.Float64Type(schema.Little)
	region, err = writeType(ty64, value.NewFloat(-2.25), 0, DefaultOptions)
	require.NoError(t, err)
	data, err = region.AsBytes()
	require.NoError(t, err)
	v, _, err = readType(ty64, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	f, ok = v.Float()
	require.True(t, ok)
	require.Equal(t, -2.25, f)
}

func TestReadWriteStringFixed(t *testing.T) {
	size := schema.FixedSize(5)
	ty := schema.StringType(&size)

	region, err := writeType(ty, value.NewString("hello"), 0, DefaultOptions)
	require.NoError(t, err)
	data, err := region.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	v, _, err := readType(ty, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	s, ok := v.Str()
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestReadStringInvalidUTF8(t *testing.T) {
	size := schema.FixedSize(2)
	ty := schema.StringType(&size)
	_, _, err := readType(ty, bits.View([]byte{0xFF, 0xFE}), 0, DefaultOptions)
	require.ErrorIs(t, err, schema.ErrUtf8)
}

func TestWriteStringWrongFixedLength(t *testing.T) {
	size := schema.FixedSize(3)
	ty := schema.StringType(&size)
	_, err := writeType(ty, value.NewString("a"), 0, DefaultOptions)
	require.ErrorIs(t, err, schema.ErrBytesSizeError)
}

func TestReadWriteBin(t *testing.T) {
	size := schema.FixedSize(3)
	ty := schema.BinType(&size)
	region, err := writeType(ty, value.NewBytes([]byte{1, 2, 3}), 0, DefaultOptions)
	require.NoError(t, err)
	data, err := region.AsBytes()
	require.NoError(t, err)
	v, _, err := readType(ty, bits.View(data), 0, DefaultOptions)
	require.NoError(t, err)
	b, ok := v.ByteSlice()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, b)
}
