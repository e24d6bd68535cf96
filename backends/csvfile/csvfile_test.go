package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{"valid config", &Config{FilePath: "test.csv"}, nil},
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

	b, err := New(&Config{FilePath: filepath.Join(t.TempDir(), "table.csv")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestBackend_AbsentFile(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	headers, err := b.Headers(ctx, "T")
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if headers != nil {
		t.Errorf("Headers() = %v, want nil for absent file", headers)
	}

	rows, err := b.ReadRows(ctx, "T")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if rows != nil {
		t.Errorf("ReadRows() = %v, want nil for absent file", rows)
	}

	if err := b.ClearRows(ctx, "T"); err != nil {
		t.Errorf("ClearRows() on absent file error = %v", err)
	}
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	headers := []string{"id", "name"}
	if err := b.CreateTable(ctx, "T", headers); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	got, err := b.Headers(ctx, "T")
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if !reflect.DeepEqual(got, headers) {
		t.Errorf("Headers() = %v, want %v", got, headers)
	}

	rows := [][]string{{"1", "Alice"}, {"2", "Bob"}, {"3", "Carol"}}
	if err := b.AppendRows(ctx, "T", rows); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	gotRows, err := b.ReadRows(ctx, "T")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if !reflect.DeepEqual(gotRows, rows) {
		t.Errorf("ReadRows() = %v, want %v", gotRows, rows)
	}

	t.Run("update row", func(t *testing.T) {
		if err := b.UpdateRow(ctx, "T", 1, []string{"2", "Bobby"}); err != nil {
			t.Fatalf("UpdateRow() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "T")
		if gotRows[1][1] != "Bobby" {
			t.Errorf("row 1 = %v, want Bobby", gotRows[1])
		}
		if gotRows[0][1] != "Alice" || gotRows[2][1] != "Carol" {
			t.Errorf("neighbors changed: %v", gotRows)
		}
	})

	t.Run("delete row", func(t *testing.T) {
		if err := b.DeleteRow(ctx, "T", 0); err != nil {
			t.Fatalf("DeleteRow() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "T")
		want := [][]string{{"2", "Bobby"}, {"3", "Carol"}}
		if !reflect.DeepEqual(gotRows, want) {
			t.Errorf("ReadRows() = %v, want %v", gotRows, want)
		}
	})

	t.Run("row index out of range", func(t *testing.T) {
		if err := b.UpdateRow(ctx, "T", 99, []string{"x"}); !errors.Is(err, ErrRowOutOfRange) {
			t.Errorf("UpdateRow() error = %v, want ErrRowOutOfRange", err)
		}
		if err := b.DeleteRow(ctx, "T", -1); !errors.Is(err, ErrRowOutOfRange) {
			t.Errorf("DeleteRow() error = %v, want ErrRowOutOfRange", err)
		}
	})

	t.Run("clear rows keeps header", func(t *testing.T) {
		if err := b.ClearRows(ctx, "T"); err != nil {
			t.Fatalf("ClearRows() error = %v", err)
		}
		gotRows, _ := b.ReadRows(ctx, "T")
		if len(gotRows) != 0 {
			t.Errorf("ReadRows() = %v, want empty", gotRows)
		}
		gotHeaders, _ := b.Headers(ctx, "T")
		if !reflect.DeepEqual(gotHeaders, headers) {
			t.Errorf("Headers() = %v, want %v", gotHeaders, headers)
		}
	})
}

func TestBackend_WriteHeader(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.CreateTable(ctx, "T", []string{"id", "name"}); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := b.AppendRows(ctx, "T", [][]string{{"1", "Alice"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	extended := []string{"id", "name", "email"}
	if err := b.WriteHeader(ctx, "T", extended); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	headers, _ := b.Headers(ctx, "T")
	if !reflect.DeepEqual(headers, extended) {
		t.Errorf("Headers() = %v, want %v", headers, extended)
	}
	rows, _ := b.ReadRows(ctx, "T")
	if len(rows) != 1 || rows[0][0] != "1" {
		t.Errorf("data rows lost on header rewrite: %v", rows)
	}
}

func TestBackend_DelimiterAndQuoting(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.CreateTable(ctx, "T", []string{"id", "note"}); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := b.AppendRows(ctx, "T", [][]string{{"1", "semi;colon"}, {"2", "plain"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	data, err := os.ReadFile(b.config.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "id;note") {
		t.Errorf("header not ;-delimited: %q", content)
	}
	if !strings.Contains(content, `"semi;colon"`) {
		t.Errorf("delimiter-bearing cell not quoted: %q", content)
	}
	if strings.Contains(content, `"plain"`) {
		t.Errorf("plain cell quoted unnecessarily: %q", content)
	}

	rows, err := b.ReadRows(ctx, "T")
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if rows[0][1] != "semi;colon" {
		t.Errorf("quoted cell round trip = %q", rows[0][1])
	}
}

func TestBackend_ContextCancellation(t *testing.T) {
	b := newTestBackend(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Headers(ctx, "T"); !errors.Is(err, context.Canceled) {
		t.Errorf("Headers() error = %v, want context.Canceled", err)
	}
	if err := b.AppendRows(ctx, "T", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("AppendRows() error = %v, want context.Canceled", err)
	}
}
