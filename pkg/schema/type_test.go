package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZB94/bin2json/pkg/checksum"
	"github.com/ZB94/bin2json/pkg/keyrange"
)

func TestUint16JSONRoundTrip(t *testing.T) {
	ty := Uint16Type(Unit{Endian: Big, Size: func() *Size { s := Bytes(2); return &s }()})
	data, err := ty.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Uint16","unit":{"endian":"Big","size":{"type":"Bytes","value":2}}}`, string(data))

	var back Type
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, *ty, back)
}

func TestStructJSONRoundTrip(t *testing.T) {
	ty := StructType([]Field{{Name: "cmd", Type: Uint8Type(Unit{Endian: Big})}}, nil)
	data, err := ty.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Struct","fields":[{"name":"cmd","type":"Uint8","unit":{"endian":"Big"}}]}`, string(data))

	var back Type
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, *ty, back)
}

func TestEnumJSONRoundTrip(t *testing.T) {
	m := keyrange.New[*Type]()
	m.Insert(keyrange.NewValue(1), Uint8Type(Unit{}))
	m.Insert(keyrange.NewHalfOpen(2, 10), Int16Type(Unit{}))
	ty := EnumType("cmd", m, nil)

	data, err := ty.MarshalJSON()
	require.NoError(t, err)

	var back Type
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, KindEnum, back.Kind)
	require.Equal(t, "cmd", back.By)

	got, ok := back.EnumMap.Get(1)
	require.True(t, ok)
	require.Equal(t, KindUint8, got.Kind)
}

func TestMagicJSONRoundTrip(t *testing.T) {
	ty := MagicType([]byte{0x23, 0x23})
	data, err := ty.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Magic","magic":[35,35]}`, string(data))

	var back Type
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, *ty, back)
}

func TestBytesSizeJSONVariants(t *testing.T) {
	cases := []struct {
		name string
		json string
		want BytesSize
	}{
		{"all", `"all"`, BytesSizeAll},
		{"fixed", `100`, FixedSize(100)},
		{"endwith", `[1,2,3]`, EndWithSize([]byte{1, 2, 3})},
		{"by", `"field name"`, BySize("field name")},
	}
	for _, c := range cases {
		var bs BytesSize
		require.NoError(t, bs.UnmarshalJSON([]byte(c.json)), c.name)
		require.Equal(t, c.want, bs, c.name)
	}
}

func TestChecksumJSONRoundTrip(t *testing.T) {
	ty := ChecksumType(checksum.Xor, "data", "")
	data, err := ty.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Checksum","method":"Xor","start_key":"data"}`, string(data))

	var back Type
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, *ty, back)
}

func TestFieldFlattenRoundTrip(t *testing.T) {
	f := Field{Name: "len", Type: Uint16Type(Unit{Endian: Big})}
	data, err := f.MarshalJSON()
	require.NoError(t, err)

	var back Field
	require.NoError(t, back.UnmarshalJSON(data))
	require.Equal(t, f.Name, back.Name)
	require.Equal(t, *f.Type, *back.Type)
}
