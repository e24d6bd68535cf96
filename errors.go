package sheetdb

import "errors"

var (
	// ErrNotFound is returned when no record matches the given filters.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a record or field mapping is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrAccess is returned when the storage medium cannot be read or written.
	ErrAccess = errors.New("storage access failed")

	// ErrConflict is returned when an operation collides with an existing record.
	ErrConflict = errors.New("conflicting record")
)
