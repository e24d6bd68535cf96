package excel

import "errors"

var (
	// ErrMissingFilePath is returned when file path is not specified.
	ErrMissingFilePath = errors.New("file path is required")

	// ErrSheetNotFound is returned when a mutation targets a sheet that
	// doesn't exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrRowOutOfRange is returned when a row index does not exist.
	ErrRowOutOfRange = errors.New("row index out of range")
)
