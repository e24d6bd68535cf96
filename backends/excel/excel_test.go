package excel

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{"valid config", &Config{FilePath: "test.xlsx"}, nil},
		{"missing file path", &Config{}, ErrMissingFilePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("nil config", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Error("New(nil) should fail")
		}
	})
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	b, err := New(&Config{FilePath: filepath.Join(t.TempDir(), "tables.xlsx")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestBackend_AbsentWorkbookAndSheet(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	headers, err := b.Headers(ctx, "Users")
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if headers != nil {
		t.Errorf("Headers() = %v, want nil for absent workbook", headers)
	}

	if err := b.ClearRows(ctx, "Users"); err != nil {
		t.Errorf("ClearRows() on absent workbook error = %v", err)
	}

	// Workbook exists but the sheet does not.
	if err := b.CreateTable(ctx, "Users", []string{"id"}); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	rows, err := b.ReadRows(ctx, "Orders")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if rows != nil {
		t.Errorf("ReadRows() = %v, want nil for absent sheet", rows)
	}
	if err := b.ClearRows(ctx, "Orders"); err != nil {
		t.Errorf("ClearRows() on absent sheet error = %v", err)
	}
	if err := b.AppendRows(ctx, "Orders", [][]string{{"1"}}); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("AppendRows() error = %v, want ErrSheetNotFound", err)
	}
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	headers := []string{"id", "name"}
	if err := b.CreateTable(ctx, "Users", headers); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	got, err := b.Headers(ctx, "Users")
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if !reflect.DeepEqual(got, headers) {
		t.Errorf("Headers() = %v, want %v", got, headers)
	}

	rows := [][]string{{"1", "Alice"}, {"2", "Bob"}, {"3", "Carol"}}
	if err := b.AppendRows(ctx, "Users", rows); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	gotRows, err := b.ReadRows(ctx, "Users")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if !reflect.DeepEqual(gotRows, rows) {
		t.Errorf("ReadRows() = %v, want %v", gotRows, rows)
	}

	t.Run("update row", func(t *testing.T) {
		if err := b.UpdateRow(ctx, "Users", 1, []string{"2", "Bobby"}); err != nil {
			t.Fatalf("UpdateRow() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "Users")
		if gotRows[1][1] != "Bobby" {
			t.Errorf("row 1 = %v, want Bobby", gotRows[1])
		}
	})

	t.Run("delete row shifts rows up", func(t *testing.T) {
		if err := b.DeleteRow(ctx, "Users", 0); err != nil {
			t.Fatalf("DeleteRow() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "Users")
		want := [][]string{{"2", "Bobby"}, {"3", "Carol"}}
		if !reflect.DeepEqual(gotRows, want) {
			t.Errorf("ReadRows() = %v, want %v", gotRows, want)
		}
	})

	t.Run("row index out of range", func(t *testing.T) {
		if err := b.UpdateRow(ctx, "Users", 99, []string{"x"}); !errors.Is(err, ErrRowOutOfRange) {
			t.Errorf("UpdateRow() error = %v, want ErrRowOutOfRange", err)
		}
		if err := b.DeleteRow(ctx, "Users", -1); !errors.Is(err, ErrRowOutOfRange) {
			t.Errorf("DeleteRow() error = %v, want ErrRowOutOfRange", err)
		}
	})

	t.Run("clear rows keeps header", func(t *testing.T) {
		if err := b.ClearRows(ctx, "Users"); err != nil {
			t.Fatalf("ClearRows() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "Users")
		if len(gotRows) != 0 {
			t.Errorf("ReadRows() = %v, want empty", gotRows)
		}
		gotHeaders, _ := b.Headers(ctx, "Users")
		if !reflect.DeepEqual(gotHeaders, headers) {
			t.Errorf("Headers() = %v, want %v", gotHeaders, headers)
		}

		// Clearing an already empty sheet is a no-op.
		if err := b.ClearRows(ctx, "Users"); err != nil {
			t.Errorf("ClearRows() on empty sheet error = %v", err)
		}
	})
}

func TestBackend_MultipleSheets(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.CreateTable(ctx, "Users", []string{"id", "name"}); err != nil {
		t.Fatalf("CreateTable(Users) error = %v", err)
	}
	if err := b.CreateTable(ctx, "Orders", []string{"order_id", "total"}); err != nil {
		t.Fatalf("CreateTable(Orders) error = %v", err)
	}

	if err := b.AppendRows(ctx, "Users", [][]string{{"1", "Alice"}}); err != nil {
		t.Fatalf("AppendRows(Users) error = %v", err)
	}
	if err := b.AppendRows(ctx, "Orders", [][]string{{"100", "9.99"}}); err != nil {
		t.Fatalf("AppendRows(Orders) error = %v", err)
	}

	users, _ := b.ReadRows(ctx, "Users")
	orders, _ := b.ReadRows(ctx, "Orders")
	if !reflect.DeepEqual(users, [][]string{{"1", "Alice"}}) {
		t.Errorf("Users rows = %v", users)
	}
	if !reflect.DeepEqual(orders, [][]string{{"100", "9.99"}}) {
		t.Errorf("Orders rows = %v", orders)
	}

	headers, _ := b.Headers(ctx, "Orders")
	if !reflect.DeepEqual(headers, []string{"order_id", "total"}) {
		t.Errorf("Orders headers = %v", headers)
	}
}

func TestBackend_WriteHeaderExtends(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.CreateTable(ctx, "Users", []string{"id", "name"}); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := b.AppendRows(ctx, "Users", [][]string{{"1", "Alice"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	extended := []string{"id", "name", "email"}
	if err := b.WriteHeader(ctx, "Users", extended); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	headers, _ := b.Headers(ctx, "Users")
	if !reflect.DeepEqual(headers, extended) {
		t.Errorf("Headers() = %v, want %v", headers, extended)
	}
	rows, _ := b.ReadRows(ctx, "Users")
	if len(rows) != 1 || rows[0][0] != "1" {
		t.Errorf("data rows lost on header rewrite: %v", rows)
	}
}

func TestBackend_ContextCancellation(t *testing.T) {
	b := newTestBackend(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.ReadRows(ctx, "Users"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadRows() error = %v, want context.Canceled", err)
	}
	if err := b.CreateTable(ctx, "Users", []string{"id"}); !errors.Is(err, context.Canceled) {
		t.Errorf("CreateTable() error = %v, want context.Canceled", err)
	}
}
