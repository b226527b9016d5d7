package filter

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMalformedTree marks structurally invalid input: a leaf without a
	// field, operator or scalar value, a node mixing leaf keys with
	// conditions, a non-array conditions list, a nil child, or nesting
	// deeper than MaxDepth.
	ErrMalformedTree = errors.New("malformed filter tree")

	// ErrUnknownOperator marks a logic or comparison operator outside the
	// supported set.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrParameterCollision means two leaves were bound to the same
	// parameter name. Compile re-keys on collision, so this is an internal
	// error.
	ErrParameterCollision = errors.New("parameter collision")
)

// PathError locates a validation failure inside a tree.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedTree) || errors.Is(err, ErrUnknownOperator)
}

func malformed(path, format string, args ...any) error {
	return &PathError{Path: path, Err: fmt.Errorf("%w: %s", ErrMalformedTree, fmt.Sprintf(format, args...))}
}

func atPath(path string, err error) error {
	return &PathError{Path: path, Err: err}
}

// childPath renders the path of the i-th child, e.g. "conditions[1].conditions[0]".
func childPath(parent string, i int) string {
	p := "conditions[" + strconv.Itoa(i) + "]"
	if parent == "" {
		return p
	}
	return parent + "." + p
}
