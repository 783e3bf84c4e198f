package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZB94/bin2json/pkg/convert"
	"github.com/ZB94/bin2json/pkg/keyrange"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/secure"
	"github.com/ZB94/bin2json/pkg/value"
)

func TestConvertOnReadAndOnWrite(t *testing.T) {
	ty := schema.ConverterType(
		schema.Uint8Type(schema.BigEndian()),
		convert.New("self + 1"),
		convert.New("self - 1"),
	)

	raw, err := ConvertAndWrite(ty, value.NewInt(10), DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, raw)

	v, rest, err := ReadAndConvert(ty, raw, DefaultOptions)
	require.NoError(t, err)
	require.Empty(t, rest)
	n, ok := v.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 10, n)
}

func TestConvertOverStructField(t *testing.T) {
	ty := schema.StructType([]schema.Field{
		{Name: "celsius", Type: schema.ConverterType(
			schema.Int16Type(schema.BigEndian()),
			convert.New("self / 10.0"),
			convert.New("self * 10"),
		)},
	}, nil)

	obj := value.NewObj()
	obj.Set("celsius", value.NewFloat(21.5))
	v := value.NewObject(obj)

	raw, err := ConvertAndWrite(ty, v, DefaultOptions)
	require.NoError(t, err)

	got, _, err := ReadAndConvert(ty, raw, DefaultOptions)
	require.NoError(t, err)
	gotObj, _ := got.ObjVal()
	c, ok := gotObj.Get("celsius")
	require.True(t, ok)
	f, ok := c.Float()
	require.True(t, ok)
	require.InDelta(t, 21.5, f, 0.001)
}

func TestEncryptIdentityKeyRoundTrip(t *testing.T) {
	inner := schema.StructType([]schema.Field{
		{Name: "id", Type: schema.Uint32Type(schema.BigEndian())},
	}, nil)
	ty := schema.EncryptType(inner, secure.None(), secure.None(), nil)

	obj := value.NewObj()
	obj.Set("id", value.NewUint(99))
	v := value.NewObject(obj)

	data, err := Write(ty, v, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 99}, data)

	got, rest, err := Read(ty, data, DefaultOptions)
	require.NoError(t, err)
	require.Empty(t, rest)
	gotObj, _ := got.ObjVal()
	id, ok := gotObj.Get("id")
	require.True(t, ok)
	n, _ := id.Uint()
	require.EqualValues(t, 99, n)
}

func TestSignIdentityKeyRoundTrip(t *testing.T) {
	ty := schema.StructType([]schema.Field{
		{Name: "a", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "b", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "sig", Type: schema.SignType("a", "sig", secure.None(), secure.None(), nil)},
	}, nil)

	obj := value.NewObj()
	obj.Set("a", value.NewUint(5))
	obj.Set("b", value.NewUint(6))
	v := value.NewObject(obj)

	data, err := Write(ty, v, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6}, data)

	_, _, err = Read(ty, data, DefaultOptions)
	require.NoError(t, err)
}

func TestStructWithArrayAndEnumComposite(t *testing.T) {
	m := keyrange.New[*schema.Type]()
	m.Insert(keyrange.NewValue(0), schema.Uint8Type(schema.BigEndian()))
	m.Insert(keyrange.NewValue(1), schema.StringType(fixedSizeRef(2)))
	inner := schema.StructType([]schema.Field{
		{Name: "tag", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "body", Type: schema.EnumType("tag", m, nil)},
	}, nil)
	length := schema.FixedLength(2)
	ty := schema.StructType([]schema.Field{
		{Name: "count", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "entries", Type: schema.ArrayType(inner, &length, nil)},
	}, nil)

	mkEntry := func(tag uint64, body value.Value) value.Value {
		o := value.NewObj()
		o.Set("tag", value.NewUint(tag))
		o.Set("body", body)
		return value.NewObject(o)
	}
	obj := value.NewObj()
	obj.Set("count", value.NewUint(2))
	obj.Set("entries", value.NewArray(
		mkEntry(0, value.NewUint(7)),
		mkEntry(1, value.NewString("go")),
	))
	v := value.NewObject(obj)

	data, err := Write(ty, v, DefaultOptions)
	require.NoError(t, err)

	got, _, err := Read(ty, data, DefaultOptions)
	require.NoError(t, err)
	gotObj, _ := got.ObjVal()
	entriesV, _ := gotObj.Get("entries")
	entries, ok := entriesV.Items()
	require.True(t, ok)
	require.Len(t, entries, 2)
}
