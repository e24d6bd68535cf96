package csvfile

import "errors"

var (
	// ErrMissingFilePath is returned when file path is not specified.
	ErrMissingFilePath = errors.New("file path is required")

	// ErrRowOutOfRange is returned when a row index does not exist.
	ErrRowOutOfRange = errors.New("row index out of range")
)
