package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONScalarTypes(t *testing.T) {
	v, err := ParseJSON([]byte(`null`))
	require.NoError(t, err)
	require.True(t, v.IsNull())

	v, err = ParseJSON([]byte(`true`))
	require.NoError(t, err)
	b, _ := v.Bool()
	require.True(t, b)

	v, err = ParseJSON([]byte(`42`))
	require.NoError(t, err)
	f, _ := v.Float()
	require.Equal(t, 42.0, f)

	v, err = ParseJSON([]byte(`"hi"`))
	require.NoError(t, err)
	s, _ := v.Str()
	require.Equal(t, "hi", s)
}

func TestParseJSONPreservesObjectOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)
	obj, ok := v.ObjVal()
	require.True(t, ok)
	require.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestParseJSONArray(t *testing.T) {
	v, err := ParseJSON([]byte(`[1,2,3]`))
	require.NoError(t, err)
	items, ok := v.Items()
	require.True(t, ok)
	require.Len(t, items, 3)
}

func TestMarshalJSONRoundTripPreservesOrder(t *testing.T) {
	obj := NewObj()
	obj.Set("z", NewInt(1))
	obj.Set("a", NewInt(2))
	v := NewObject(obj)

	data, err := v.MarshalJSON()
	require.NoError(t, err)

	back, err := ParseJSON(data)
	require.NoError(t, err)
	backObj, ok := back.ObjVal()
	require.True(t, ok)
	require.Equal(t, []string{"z", "a"}, backObj.Keys())
}

func TestMarshalJSONBytesAsIntArray(t *testing.T) {
	v := NewBytes([]byte{1, 2, 255})
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `[1,2,255]`, string(data))
}

func TestMarshalJSONLargeIntegerPrecision(t *testing.T) {
	v := NewUint(18446744073709551615)
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `18446744073709551615`, string(data))
}
