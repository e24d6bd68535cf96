// Package gsheet implements the sheetdb.Backend interface over the
// Google Sheets API. Each logical table is a worksheet whose first row
// is the header; worksheets are created with default dimensions when
// absent. Every operation costs at least one round trip, so bulk paths
// (Values.Append, Values.Clear) are preferred over per-row calls.
package gsheet

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// defaultSheetRows is the row dimension given to newly created worksheets.
const defaultSheetRows = 100

// Backend implements the sheetdb.Backend interface for Google Sheets.
// The sheets service is built lazily on first use and cached for the
// lifetime of the backend.
type Backend struct {
	config *Config
	opts   []option.ClientOption

	mu       sync.Mutex
	service  *sheets.Service
	sheetIDs map[string]int64
}

// New creates a new Google Sheets backend. Authorization is deferred to
// the first API call; see auth.go for credential-specific constructors.
func New(config *Config, opts ...option.ClientOption) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Backend{
		config:   config.withDefaults(),
		opts:     opts,
		sheetIDs: make(map[string]int64),
	}, nil
}

// ID returns the medium identity used to key the header cache.
func (b *Backend) ID() string {
	return "gsheet:" + b.config.SpreadsheetID
}

// svc returns the sheets service, building and authorizing it on first use.
func (b *Backend) svc(ctx context.Context) (*sheets.Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.service != nil {
		return b.service, nil
	}

	service, err := sheets.NewService(ctx, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	b.service = service
	return service, nil
}

// sheetID resolves a worksheet title to its sheet ID, caching results.
// exists is false when the worksheet is absent.
func (b *Backend) sheetID(ctx context.Context, table string) (int64, bool, error) {
	b.mu.Lock()
	if id, ok := b.sheetIDs[table]; ok {
		b.mu.Unlock()
		return id, true, nil
	}
	b.mu.Unlock()

	service, err := b.svc(ctx)
	if err != nil {
		return 0, false, err
	}

	var spreadsheet *sheets.Spreadsheet
	err = b.withRetry(ctx, func() error {
		var err error
		spreadsheet, err = service.Spreadsheets.Get(b.config.SpreadsheetID).
			Fields("sheets.properties").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	found := false
	var id int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}
		b.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		if sheet.Properties.Title == table {
			id = sheet.Properties.SheetId
			found = true
		}
	}

	return id, found, nil
}

// Headers returns the worksheet's first row, or nil if the worksheet
// does not exist.
func (b *Backend) Headers(ctx context.Context, table string) ([]string, error) {
	_, exists, err := b.sheetID(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	service, err := b.svc(ctx)
	if err != nil {
		return nil, err
	}

	var resp *sheets.ValueRange
	err = b.withRetry(ctx, func() error {
		var err error
		resp, err = service.Spreadsheets.Values.Get(b.config.SpreadsheetID, fmt.Sprintf("%s!1:1", table)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get header row: %w", err)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

// ReadRows returns all data rows of the worksheet, or nil if the
// worksheet does not exist.
func (b *Backend) ReadRows(ctx context.Context, table string) ([][]string, error) {
	_, exists, err := b.sheetID(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	service, err := b.svc(ctx)
	if err != nil {
		return nil, err
	}

	var resp *sheets.ValueRange
	err = b.withRetry(ctx, func() error {
		var err error
		resp, err = service.Spreadsheets.Values.Get(b.config.SpreadsheetID, fmt.Sprintf("%s!A2:ZZ", table)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

// CreateTable adds a worksheet with default dimensions and writes the
// header row.
func (b *Backend) CreateTable(ctx context.Context, table string, headers []string) error {
	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: table,
					GridProperties: &sheets.GridProperties{
						RowCount:    defaultSheetRows,
						ColumnCount: int64(len(headers)),
					},
				},
			},
		}},
	}

	var resp *sheets.BatchUpdateSpreadsheetResponse
	err = b.withRetry(ctx, func() error {
		var err error
		resp, err = service.Spreadsheets.BatchUpdate(b.config.SpreadsheetID, req).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		b.mu.Lock()
		b.sheetIDs[table] = resp.Replies[0].AddSheet.Properties.SheetId
		b.mu.Unlock()
	}

	return b.WriteHeader(ctx, table, headers)
}

// WriteHeader rewrites the worksheet's header row.
func (b *Backend) WriteHeader(ctx context.Context, table string, headers []string) error {
	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(headers)}}
	err = b.withRetry(ctx, func() error {
		_, err := service.Spreadsheets.Values.Update(b.config.SpreadsheetID, fmt.Sprintf("%s!A1", table), vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	return nil
}

// AppendRows appends data rows in one request.
func (b *Backend) AppendRows(ctx context.Context, table string, rows [][]string) error {
	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toCells(row)
	}

	vr := &sheets.ValueRange{Values: values}
	err = b.withRetry(ctx, func() error {
		_, err := service.Spreadsheets.Values.Append(b.config.SpreadsheetID, fmt.Sprintf("%s!A:ZZ", table), vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}
	return nil
}

// UpdateRow patches one data row with a single range update.
func (b *Backend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	rowNum := index + 2
	rng := fmt.Sprintf("%s!A%d:%s%d", table, rowNum, columnName(len(row)), rowNum)
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	err = b.withRetry(ctx, func() error {
		_, err := service.Spreadsheets.Values.Update(b.config.SpreadsheetID, rng, vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", rowNum, err)
	}
	return nil
}

// DeleteRow removes one data row with a DeleteDimension request, so rows
// below shift up server-side.
func (b *Backend) DeleteRow(ctx context.Context, table string, index int) error {
	id, exists, err := b.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("worksheet %q not found", table)
	}

	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	// Grid indices are 0-based and include the header row.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(index + 1),
					EndIndex:   int64(index + 2),
				},
			},
		}},
	}

	err = b.withRetry(ctx, func() error {
		_, err := service.Spreadsheets.BatchUpdate(b.config.SpreadsheetID, req).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", index+2, err)
	}
	return nil
}

// ClearRows clears all data rows with a single batch clear, keeping the
// header row. No-op if the worksheet does not exist.
func (b *Backend) ClearRows(ctx context.Context, table string) error {
	_, exists, err := b.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	service, err := b.svc(ctx)
	if err != nil {
		return err
	}

	err = b.withRetry(ctx, func() error {
		_, err := service.Spreadsheets.Values.Clear(b.config.SpreadsheetID, fmt.Sprintf("%s!A2:ZZ", table), &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear rows: %w", err)
	}
	return nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

// columnName converts a column number to its A1 notation letter
// (1 -> A, 26 -> Z, 27 -> AA).
func columnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
