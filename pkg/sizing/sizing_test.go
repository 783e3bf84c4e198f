package sizing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/keyrange"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

func noFields(string) (value.Value, bool) { return value.Value{}, false }

func TestResolveNilIsEntireInput(t *testing.T) {
	src := bits.View([]byte{1, 2, 3})
	out, err := Resolve(nil, src, noFields)
	require.NoError(t, err)
	require.Equal(t, 24, out.Len())
}

func TestResolveFixed(t *testing.T) {
	src := bits.View([]byte{1, 2, 3, 4})
	size := schema.FixedSize(2)
	out, err := Resolve(&size, src, noFields)
	require.NoError(t, err)
	b, err := out.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, b)
}

func TestResolveFixedIncomplete(t *testing.T) {
	src := bits.View([]byte{1})
	size := schema.FixedSize(5)
	_, err := Resolve(&size, src, noFields)
	require.ErrorIs(t, err, schema.ErrIncomplete)
}

func TestResolveEndWith(t *testing.T) {
	src := bits.View([]byte{0xAA, 0xBB, 0x00, 0x00, 0xCC})
	size := schema.EndWithSize([]byte{0x00, 0x00})
	out, err := Resolve(&size, src, noFields)
	require.NoError(t, err)
	b, err := out.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00}, b)
}

func TestResolveEndWithNotFound(t *testing.T) {
	src := bits.View([]byte{0xAA, 0xBB})
	size := schema.EndWithSize([]byte{0xFF, 0xFF})
	_, err := Resolve(&size, src, noFields)
	require.ErrorIs(t, err, schema.ErrEndNotFound)
}

func TestResolveBy(t *testing.T) {
	src := bits.View([]byte{1, 2, 3, 4})
	lookup := func(name string) (value.Value, bool) {
		if name == "len" {
			return value.NewUint(3), true
		}
		return value.Value{}, false
	}
	size := schema.BySize("len")
	out, err := Resolve(&size, src, lookup)
	require.NoError(t, err)
	require.Equal(t, 24, out.Len())
}

func TestResolveByMissingField(t *testing.T) {
	src := bits.View([]byte{1, 2})
	size := schema.BySize("len")
	_, err := Resolve(&size, src, noFields)
	require.ErrorIs(t, err, schema.ErrByKeyNotFound)
}

func TestResolveByInvalidTarget(t *testing.T) {
	src := bits.View([]byte{1, 2})
	lookup := func(string) (value.Value, bool) { return value.NewString("nope"), true }
	size := schema.BySize("len")
	_, err := Resolve(&size, src, lookup)
	require.ErrorIs(t, err, schema.ErrLengthTargetIsInvalid)
}

func TestResolveEnum(t *testing.T) {
	src := bits.View([]byte{1, 2, 3, 4, 5})
	m := keyrange.New[int]()
	m.Insert(keyrange.NewValue(1), 2)
	m.Insert(keyrange.NewValue(2), 4)
	size := schema.EnumSize("kind", m)
	lookup := func(string) (value.Value, bool) { return value.NewInt(2), true }
	out, err := Resolve(&size, src, lookup)
	require.NoError(t, err)
	require.Equal(t, 32, out.Len())
}

func TestResolveEnumKeyNotFound(t *testing.T) {
	src := bits.View([]byte{1, 2})
	m := keyrange.New[int]()
	size := schema.EnumSize("kind", m)
	lookup := func(string) (value.Value, bool) { return value.NewInt(99), true }
	_, err := Resolve(&size, src, lookup)
	require.ErrorIs(t, err, schema.ErrEnumKeyNotFound)
}
