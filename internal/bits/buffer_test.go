package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewSplitAt(t *testing.T) {
	b := View([]byte{0xAB, 0xCD})
	require.Equal(t, 16, b.Len())

	head, rest, err := b.SplitAt(4)
	require.NoError(t, err)
	require.Equal(t, 4, head.Len())
	require.Equal(t, 12, rest.Len())

	v, _, err := head.ReadUint(4)
	require.NoError(t, err)
	require.Equal(t, uint64(0xA), v)
}

func TestSplitAtTruncated(t *testing.T) {
	b := View([]byte{0x00})
	_, _, err := b.SplitAt(9)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestAsBytesRequiresAlignment(t *testing.T) {
	b := View([]byte{0xFF})
	head, _, err := b.SplitAt(4)
	require.NoError(t, err)
	_, err = head.AsBytes()
	require.ErrorIs(t, err, ErrNotByteAligned)
}

func TestAsBytesUnalignedOffset(t *testing.T) {
	b := View([]byte{0b10101010, 0b01010101, 0b01010000})
	_, rest, err := b.SplitAt(4)
	require.NoError(t, err)
	rest, _, err = rest.SplitAt(16)
	require.NoError(t, err)
	out, err := rest.AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0b10100101, 0b0101}, []byte{out[0], out[1] >> 4})
}

func TestReadUintMSBFirst(t *testing.T) {
	b := View([]byte{0x80})
	v, rest, err := b.ReadUint(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
	require.Equal(t, 7, rest.Len())

	v, _, err = rest.ReadUint(7)
	require.NoError(t, err)
	require.Equal(t, uint64(0), v)
}

func TestBuilderAppendBitsRoundTrip(t *testing.T) {
	w := NewBuilder(4)
	w.AppendBits(0b101, 3)
	w.AppendBits(0b11111, 5)
	require.Equal(t, 8, w.Len())
	require.Equal(t, []byte{0b10111111}, w.Bytes())
}

func TestBuilderAppendBufferPreservesUnalignedTail(t *testing.T) {
	w := NewBuilder(2)
	w.AppendBits(0b1010, 4)
	buf := w.Buffer()
	require.Equal(t, 4, buf.Len())

	v, _, err := buf.ReadUint(4)
	require.NoError(t, err)
	require.Equal(t, uint64(0b1010), v)
}

func TestBuilderAppendBytesPanicsWhenUnaligned(t *testing.T) {
	w := NewBuilder(2)
	w.AppendBits(0b1, 1)
	require.Panics(t, func() {
		w.AppendBytes([]byte{0x00})
	})
}
