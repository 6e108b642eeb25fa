package core

import "errors"

var (
	// ErrSchemaMismatch reports a row or value whose shape or type disagrees
	// with the schema it is checked against.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrTypeMismatch is returned by Value accessors used on the wrong variant.
	// It matches ErrSchemaMismatch under errors.Is.
	ErrTypeMismatch = &typeMismatch{}

	// ErrInvalidArgument reports a malformed builder or constructor call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConversion reports a raw driver value that a column type cannot convert.
	ErrConversion = errors.New("conversion failed")

	// ErrStore wraps failures reported by the backing store.
	ErrStore = errors.New("store error")

	// ErrNotFound reports a failed column or table lookup.
	ErrNotFound = errors.New("not found")
)

type typeMismatch struct{}

func (*typeMismatch) Error() string { return "type mismatch" }

func (*typeMismatch) Unwrap() error { return ErrSchemaMismatch }
