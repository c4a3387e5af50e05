package pipeline

import (
	"errors"
	"fmt"

	"space-matchmaker/internal/model"
)

// ErrMissingColumn is wrapped when a table lacks a column the matcher interprets.
var ErrMissingColumn = errors.New("missing required column")

// NotFoundError means a selector did not resolve to an operator. It is recoverable:
// Run reports it and returns an empty result.
type NotFoundError struct {
	Selector model.Selector
	Count    int
}

func (e *NotFoundError) Error() string {
	if e.Selector.ByName {
		return fmt.Sprintf("no operator found with this name: %s", e.Selector.Name)
	}
	return fmt.Sprintf("invalid operator index: %d (have %d operators)", e.Selector.Index, e.Count)
}

// IOError wraps failures reading inputs or writing outputs. It aborts the run.
type IOError struct {
	Op   string // "read", "mkdir", "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsIOError reports whether err is an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
