// Package csvfile implements the sheetdb.Backend interface over a
// ;-delimited UTF-8 text file. The file holds exactly one table: the
// first line is the header row, every following line a data row. Append
// is the only cheap path; patching or deleting a row rewrites the whole
// file.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Delimiter separates fields on disk. Quoting is minimal: cells are
// quoted only when they contain the delimiter, a quote, or a newline.
const Delimiter = ';'

// Backend implements the sheetdb.Backend interface for delimited-text files.
type Backend struct {
	config *Config
	mu     sync.Mutex
}

// New creates a new CSV backend with the given configuration.
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
	return "csv:" + b.config.FilePath
}

// Headers returns the file's header line, or nil if the file does not exist.
func (b *Backend) Headers(ctx context.Context, table string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headers, _, err := b.readAll()
	return headers, err
}

// ReadRows returns all data rows, or nil if the file does not exist.
func (b *Backend) ReadRows(ctx context.Context, table string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, rows, err := b.readAll()
	return rows, err
}

// CreateTable writes a new file containing only the header line.
func (b *Backend) CreateTable(ctx context.Context, table string, headers []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return b.writeAll(headers, nil)
}

// WriteHeader rewrites the header line, keeping data rows as stored.
func (b *Backend) WriteHeader(ctx context.Context, table string, headers []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	_, rows, err := b.readAll()
	if err != nil {
		return err
	}

	return b.writeAll(headers, rows)
}

// AppendRows appends data rows to the file.
func (b *Backend) AppendRows(ctx context.Context, table string, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(b.config.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}

	return nil
}

// UpdateRow replaces one data row and rewrites the file.
func (b *Backend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	headers, rows, err := b.readAll()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	rows[index] = row
	return b.writeAll(headers, rows)
}

// DeleteRow removes one data row and rewrites the file.
func (b *Backend) DeleteRow(ctx context.Context, table string, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	headers, rows, err := b.readAll()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	rows = append(rows[:index], rows[index+1:]...)
	return b.writeAll(headers, rows)
}

// ClearRows rewrites the file with the header line only. No-op if the
// file does not exist or holds no data rows.
func (b *Backend) ClearRows(ctx context.Context, table string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	headers, rows, err := b.readAll()
	if err != nil {
		return err
	}
	if len(headers) == 0 || len(rows) == 0 {
		return nil
	}

	return b.writeAll(headers, nil)
}

// readAll loads the header line and data rows. A missing file reads as
// an absent table.
func (b *Backend) readAll() ([]string, [][]string, error) {
	f, err := os.Open(b.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = Delimiter
	r.FieldsPerRecord = -1

	lines, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil, nil
	}

	return lines[0], lines[1:], nil
}

// writeAll rewrites the whole file: header line first, then data rows.
func (b *Backend) writeAll(headers []string, rows [][]string) error {
	dir := filepath.Dir(b.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(b.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}
