package gsheet

import "errors"

var (
	// ErrMissingSpreadsheetID is returned when the spreadsheet ID is not
	// specified.
	ErrMissingSpreadsheetID = errors.New("spreadsheet ID is required")

	// ErrQuotaExceeded is returned when the API rate limit persists past
	// all retries.
	ErrQuotaExceeded = errors.New("quota exceeded")
)
