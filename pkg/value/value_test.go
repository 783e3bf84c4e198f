package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsAndAccessors(t *testing.T) {
	require.True(t, NewNull().IsNull())

	b, ok := NewBool(true).Bool()
	require.True(t, ok)
	require.True(t, b)

	i, ok := NewInt(-7).Int()
	require.True(t, ok)
	require.EqualValues(t, -7, i)

	u, ok := NewUint(7).Uint()
	require.True(t, ok)
	require.EqualValues(t, 7, u)

	f, ok := NewFloat(1.5).Float()
	require.True(t, ok)
	require.Equal(t, 1.5, f)

	s, ok := NewString("hi").Str()
	require.True(t, ok)
	require.Equal(t, "hi", s)

	bs, ok := NewBytes([]byte{1, 2, 3}).ByteSlice()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, bs)
}

func TestBytesAreCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := NewBytes(src)
	src[0] = 9
	bs, _ := v.ByteSlice()
	require.Equal(t, byte(1), bs[0])
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObj()
	o.Set("z", NewInt(1))
	o.Set("a", NewInt(2))
	o.Set("m", NewInt(3))
	require.Equal(t, []string{"z", "a", "m"}, o.Keys())

	o.Set("a", NewInt(99))
	require.Equal(t, []string{"z", "a", "m"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	got, _ := v.Int()
	require.EqualValues(t, 99, got)
}

func TestAsInt64Coercion(t *testing.T) {
	i, ok := NewUint(5).AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 5, i)

	_, ok = NewFloat(1.5).AsInt64()
	require.False(t, ok)

	i, ok = NewFloat(4.0).AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 4, i)

	_, ok = NewString("x").AsInt64()
	require.False(t, ok)
}

func TestAsUint64Coercion(t *testing.T) {
	_, ok := NewInt(-1).AsUint64()
	require.False(t, ok)

	u, ok := NewInt(5).AsUint64()
	require.True(t, ok)
	require.EqualValues(t, 5, u)
}

func TestEqual(t *testing.T) {
	a := NewObject(NewObj())
	obj, _ := a.ObjVal()
	obj.Set("x", NewInt(1))

	b := NewObject(NewObj())
	obj2, _ := b.ObjVal()
	obj2.Set("x", NewInt(1))

	require.True(t, Equal(a, b))

	obj2.Set("y", NewInt(2))
	require.False(t, Equal(a, b))

	require.True(t, Equal(NewArray(NewInt(1), NewInt(2)), NewArray(NewInt(1), NewInt(2))))
	require.False(t, Equal(NewArray(NewInt(1)), NewArray(NewInt(1), NewInt(2))))
}
