// Package excel implements the sheetdb.Backend interface over a local
// workbook file. Each logical table is a sheet whose first row is the
// header. The workbook is created on first write; unlike the CSV medium,
// rows can be patched and removed without rewriting unrelated rows.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Backend implements the sheetdb.Backend interface for workbook files.
type Backend struct {
	config *Config
	mu     sync.RWMutex
}

// New creates a new Excel backend with the given configuration.
func New(config *Config) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	configCopy := *config
	return &Backend{config: &configCopy}, nil
}

// ID returns the medium identity used to key the header cache.
func (b *Backend) ID() string {
	return "xlsx:" + b.config.FilePath
}

// Headers returns the sheet's first row, or nil if the workbook or sheet
// does not exist.
func (b *Backend) Headers(ctx context.Context, table string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := b.readSheet(table)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// ReadRows returns all data rows of the sheet, or nil if the workbook or
// sheet does not exist.
func (b *Backend) ReadRows(ctx context.Context, table string) ([][]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := b.readSheet(table)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[1:], nil
}

// CreateTable creates the sheet with the given header row, creating the
// workbook itself if needed.
func (b *Backend) CreateTable(ctx context.Context, table string, headers []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := b.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	index, err := f.NewSheet(table)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// A fresh workbook carries a default sheet that is not ours.
	if created {
		if defaultSheet := f.GetSheetName(0); defaultSheet != table {
			_ = f.DeleteSheet(defaultSheet)
		}
	}

	cells := toCells(headers)
	if err := f.SetSheetRow(table, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return b.save(f)
}

// WriteHeader rewrites the sheet's header row in place.
func (b *Backend) WriteHeader(ctx context.Context, table string, headers []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := b.openExisting(table)
	if err != nil {
		return err
	}
	defer f.Close()

	cells := toCells(headers)
	if err := f.SetSheetRow(table, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return b.save(f)
}

// AppendRows appends data rows below the last occupied row.
func (b *Backend) AppendRows(ctx context.Context, table string, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := b.openExisting(table)
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}

	next := len(existing) + 1
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", next+i)
		cells := toCells(row)
		if err := f.SetSheetRow(table, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", next+i, err)
		}
	}

	return b.save(f)
}

// UpdateRow patches one data row in place.
func (b *Backend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := b.openExisting(table)
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}
	if index < 0 || index >= len(existing)-1 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	cell := fmt.Sprintf("A%d", index+2)
	cells := toCells(row)
	if err := f.SetSheetRow(table, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", index+2, err)
	}

	return b.save(f)
}

// DeleteRow removes one data row; rows below shift up.
func (b *Backend) DeleteRow(ctx context.Context, table string, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := b.openExisting(table)
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}
	if index < 0 || index >= len(existing)-1 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	if err := f.RemoveRow(table, index+2); err != nil {
		return fmt.Errorf("failed to remove row %d: %w", index+2, err)
	}

	return b.save(f)
}

// ClearRows removes all data rows, keeping the header. No-op if the
// workbook, sheet, or data rows are absent.
func (b *Backend) ClearRows(ctx context.Context, table string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(b.config.FilePath); os.IsNotExist(err) {
		return nil
	}

	f, err := excelize.OpenFile(b.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetIndex, err := f.GetSheetIndex(table)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		return nil
	}

	existing, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}
	dataRows := len(existing) - 1
	if dataRows <= 0 {
		return nil
	}

	// Removing row 2 repeatedly shifts the remaining rows up.
	for i := 0; i < dataRows; i++ {
		if err := f.RemoveRow(table, 2); err != nil {
			return fmt.Errorf("failed to remove row: %w", err)
		}
	}

	return b.save(f)
}

// readSheet returns all rows of a sheet. A missing workbook or sheet
// reads as an absent table.
func (b *Backend) readSheet(table string) ([][]string, error) {
	f, err := excelize.OpenFile(b.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetIndex, err := f.GetSheetIndex(table)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		return nil, nil
	}

	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// openOrCreate opens the workbook, creating a new in-memory one when the
// file does not exist yet. created reports which happened.
func (b *Backend) openOrCreate() (*excelize.File, bool, error) {
	if _, err := os.Stat(b.config.FilePath); err == nil {
		f, err := excelize.OpenFile(b.config.FilePath)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open workbook: %w", err)
		}
		return f, false, nil
	}
	return excelize.NewFile(), true, nil
}

// openExisting opens the workbook and requires the sheet to exist.
func (b *Backend) openExisting(table string) (*excelize.File, error) {
	f, err := excelize.OpenFile(b.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, table)
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheetIndex, err := f.GetSheetIndex(table)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, table)
	}

	return f, nil
}

func (b *Backend) save(f *excelize.File) error {
	dir := filepath.Dir(b.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := f.SaveAs(b.config.FilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
