package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxDepthExceeded indicates a schema nested deeper than Options.Limits
// permits. Not part of pkg/schema's error taxonomy since it guards against
// a resource exhaustion concern the schema language itself leaves to the host;
// carried the same way a depth-limited reflect-driven Reader guards its
// own nesting.
var ErrMaxDepthExceeded = errors.New("engine: maximum nesting depth exceeded")

// ReadError carries the field path and bit offset at which a read failure
// occurred, wrapping one of pkg/schema's sentinel errors: a context-
// carrying wrapper around a sentinel cause, not a replacement for it.
type ReadError struct {
	// Path is the dotted sequence of field names from the read's root to
	// the field that failed, e.g. "header.length".
	Path []string
	// Offset is the bit offset, relative to the input passed to Read, at
	// which the failing field began.
	Offset int
	// Err is the underlying sentinel error (see pkg/schema/errors.go).
	Err error
}

func (e *ReadError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("engine: read at bit %d: %s", e.Offset, e.Err)
	}
	return fmt.Sprintf("engine: read %s at bit %d: %s", strings.Join(e.Path, "."), e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return errors.Is(e.Err, target) }

// withReadField prepends field to a copy of a *ReadError's path, or wraps a
// plain error in a fresh ReadError rooted at field. Used as read calls
// unwind back up the struct/array nesting.
func withReadField(err error, field string, offset int) error {
	if err == nil {
		return nil
	}
	var re *ReadError
	if errors.As(err, &re) {
		path := make([]string, 0, len(re.Path)+1)
		path = append(path, field)
		path = append(path, re.Path...)
		return &ReadError{Path: path, Offset: offset + re.Offset, Err: re.Err}
	}
	return &ReadError{Path: []string{field}, Offset: offset, Err: err}
}

// WriteError carries the field path at which a write failure occurred,
// wrapping one of pkg/schema's sentinel errors.
type WriteError struct {
	Path []string
	Err  error
}

func (e *WriteError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("engine: write: %s", e.Err)
	}
	return fmt.Sprintf("engine: write %s: %s", strings.Join(e.Path, "."), e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return errors.Is(e.Err, target) }

func withWriteField(err error, field string) error {
	if err == nil {
		return nil
	}
	var we *WriteError
	if errors.As(err, &we) {
		path := make([]string, 0, len(we.Path)+1)
		path = append(path, field)
		path = append(path, we.Path...)
		return &WriteError{Path: path, Err: we.Err}
	}
	return &WriteError{Path: []string{field}, Err: err}
}
