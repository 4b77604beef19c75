package store

import "errors"

// Store errors.
var (
	// ErrReducing indicates a dispatch was attempted from inside a reducer.
	ErrReducing = errors.New("store: dispatch while reducing")

	// ErrConstructing indicates middleware dispatched during store construction.
	ErrConstructing = errors.New("store: dispatch while constructing middleware")

	// ErrNilAction indicates a nil action was dispatched.
	ErrNilAction = errors.New("store: nil action")

	// ErrNilReducer indicates the store was created without a reducer.
	ErrNilReducer = errors.New("store: nil reducer")
)
