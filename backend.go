package sheetdb

import "context"

// Backend is the medium contract implemented once per storage backend
// (delimited-text file, workbook file, remote spreadsheet service). Each
// backend owns its medium's resource handle and lifecycle; the shared
// scan/filter/map algorithm in Store drives it through these primitives.
//
// Row indices are 0-based over data rows: index 0 is the first row after
// the header. Absent tables are not an error on the read paths.
type Backend interface {
	// ID returns a stable identity for the medium, used to key the
	// header cache (e.g. "csv:/path/to/file.csv").
	ID() string

	// Headers returns the table's header row, or nil if the table
	// does not exist.
	Headers(ctx context.Context, table string) ([]string, error)

	// ReadRows returns all data rows in storage order, positionally
	// aligned to the header row, or nil if the table does not exist.
	ReadRows(ctx context.Context, table string) ([][]string, error)

	// CreateTable creates the table with the given header row.
	CreateTable(ctx context.Context, table string, headers []string) error

	// WriteHeader rewrites the table's header row, leaving data rows
	// in place. Used when the schema policy extends the header set.
	WriteHeader(ctx context.Context, table string, headers []string) error

	// AppendRows appends data rows preserving input order.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// UpdateRow replaces the data row at index.
	UpdateRow(ctx context.Context, table string, index int, row []string) error

	// DeleteRow removes the data row at index; rows below shift up.
	DeleteRow(ctx context.Context, table string, index int) error

	// ClearRows removes all data rows, keeping the header row. It is
	// a no-op if the table does not exist or has no data rows.
	ClearRows(ctx context.Context, table string) error
}
