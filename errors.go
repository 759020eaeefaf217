package omw

import (
	"errors"
	"fmt"
)

var (
	// ErrPositionMismatch reports a parameter request at an index other
	// than the stream cursor. Always a handler programming error.
	ErrPositionMismatch = errors.New("position mismatch")
	// ErrTypeMismatch reports a value whose wire type does not match the
	// requested kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArityMismatch reports a composite read whose available value
	// count or dimensionality does not match the requested shape.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrNoMatchingVariant reports a union read where no alternative
	// probed successfully.
	ErrNoMatchingVariant = errors.New("no matching variant")
	// ErrResourceUnavailable reports registration attempted without the
	// required host-symbol context.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// taggedError pairs one of the sentinel kinds with the exact message
// text surfaced to the host.
type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }

func (e *taggedError) Unwrap() error { return e.kind }

var (
	// ErrInvalidListIndex reports a tuple-list read started away from
	// the stream cursor.
	ErrInvalidListIndex error = &taggedError{ErrPositionMismatch, "Invalid param list reader index"}
	// ErrInvalidListHead reports a tuple-list read where the next wire
	// value is not a list.
	ErrInvalidListHead error = &taggedError{ErrTypeMismatch, "Invalid param list head"}
	// ErrNoAutoloadPath reports lazy registration on a wrapper instance
	// with no known module path.
	ErrNoAutoloadPath error = &taggedError{ErrResourceUnavailable, "No autoload library has been specified in this wrapper instance"}
)

// PositionError reports out-of-order access to parameter name at idx
// while the cursor is at cur.
func PositionError(name string, idx, cur int) error {
	return &taggedError{ErrPositionMismatch, fmt.Sprintf("Requested parameter %s at index %d while the current available parameter is at index %d", name, idx, cur)}
}

// MissingParamError reports a parameter request past the end of the
// argument vector.
func MissingParamError(name string, idx int) error {
	return &taggedError{ErrPositionMismatch, fmt.Sprintf("Requested parameter %s at index %d but there is not enough parameters", name, idx)}
}

// ReadError reports a data-mode read whose value did not have the
// requested type.
func ReadError(name string, idx int) error {
	return &taggedError{ErrTypeMismatch, fmt.Sprintf("Failed to read parameter %s at index %d", name, idx)}
}

// TupleHeadError reports a tuple read whose next wire value is not a
// list.
func TupleHeadError(name string, idx int) error {
	return &taggedError{ErrArityMismatch, fmt.Sprintf("Expected a List for tuple parameter %s at index %d", name, idx)}
}

// TupleArityError reports a tuple read whose wire list length differs
// from the requested arity.
func TupleArityError(got, want int, name string, idx int) error {
	return &taggedError{ErrArityMismatch, fmt.Sprintf("The number of arguments for tuple does not match (got %d, expected %d) for parameter %s at index %d", got, want, name, idx)}
}

// TupleSizeError reports a tuple read with fewer remaining arguments
// than its arity.
func TupleSizeError(size int, name string, idx int) error {
	return &taggedError{ErrArityMismatch, fmt.Sprintf("Not enough args for building a tuple of size %d for parameter %s at index %d", size, name, idx)}
}

// VariantError reports a union read where no alternative matched.
func VariantError(name string, idx int) error {
	return &taggedError{ErrNoMatchingVariant, fmt.Sprintf("Failed to get variant for parameter %s at index %d", name, idx)}
}

// SymbolStateError reports a link whose state no longer matches its
// announced symbol token.
func SymbolStateError(name string, idx int) error {
	return &taggedError{ErrTypeMismatch, fmt.Sprintf("WSTP API state is not coherent, expected a symbol while reading parameter %s at index %d", name, idx)}
}
