package keyrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	cases := []struct {
		text string
		want KeyRange
	}{
		{"1", NewValue(1)},
		{"1..10", NewHalfOpen(1, 10)},
		{"1..=10", NewClosed(1, 10)},
		{"..10", NewTo(10)},
		{"..=10", NewToInclusive(10)},
		{"1..", NewFrom(1)},
		{"..", NewFull()},
		{"[1,2,3]", NewSet([]int64{1, 2, 3})},
	}
	for _, c := range cases {
		got, err := Parse(c.text)
		require.NoError(t, err, c.text)
		require.Equal(t, c.want, got, c.text)
		require.Equal(t, c.text, got.String(), c.text)
	}
}

func TestParseSetWithSpaces(t *testing.T) {
	got, err := Parse("[1, 2, 3]")
	require.NoError(t, err)
	require.Equal(t, NewSet([]int64{1, 2, 3}), got)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("abc")
	require.Error(t, err)

	_, err = Parse("[]")
	require.Error(t, err)
}

func TestContains(t *testing.T) {
	require.True(t, NewHalfOpen(1, 10).Contains(1))
	require.False(t, NewHalfOpen(1, 10).Contains(10))
	require.True(t, NewClosed(1, 10).Contains(10))
	require.True(t, NewFrom(5).Contains(1000))
	require.False(t, NewFrom(5).Contains(4))
	require.True(t, NewTo(5).Contains(-1000))
	require.False(t, NewTo(5).Contains(5))
	require.True(t, NewToInclusive(5).Contains(5))
	require.True(t, NewFull().Contains(-1))
	require.True(t, NewSet([]int64{1, 2, 3}).Contains(2))
	require.False(t, NewSet([]int64{1, 2, 3}).Contains(4))
}
