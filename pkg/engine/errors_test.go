package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithReadFieldWrapsPlainError(t *testing.T) {
	cause := errors.New("boom")
	err := withReadField(cause, "header", 16)
	require.Error(t, err)

	var re *ReadError
	require.True(t, errors.As(err, &re))
	require.Equal(t, []string{"header"}, re.Path)
	require.Equal(t, 16, re.Offset)
	require.ErrorIs(t, err, cause)
}

func TestWithReadFieldPrependsPath(t *testing.T) {
	cause := errors.New("boom")
	inner := withReadField(cause, "length", 8)
	outer := withReadField(inner, "header", 0)

	var re *ReadError
	require.True(t, errors.As(outer, &re))
	require.Equal(t, []string{"header", "length"}, re.Path)
	require.Equal(t, 8, re.Offset)
	require.ErrorIs(t, outer, cause)
}

func TestWithReadFieldNilPassthrough(t *testing.T) {
	require.NoError(t, withReadField(nil, "x", 0))
}

func TestReadErrorMessage(t *testing.T) {
	cause := errors.New("bad")
	err := &ReadError{Path: []string{"a", "b"}, Offset: 24, Err: cause}
	require.Contains(t, err.Error(), "a.b")
	require.Contains(t, err.Error(), "24")
}

func TestWithWriteFieldWrapsAndPrepends(t *testing.T) {
	cause := errors.New("nope")
	inner := withWriteField(cause, "value")
	outer := withWriteField(inner, "item")

	var we *WriteError
	require.True(t, errors.As(outer, &we))
	require.Equal(t, []string{"item", "value"}, we.Path)
	require.ErrorIs(t, outer, cause)
}

func TestWithWriteFieldNilPassthrough(t *testing.T) {
	require.NoError(t, withWriteField(nil, "x"))
}
