package api

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sheetdb/go-sheetdb/backends/csvfile"
	"github.com/sheetdb/go-sheetdb/backends/excel"
	"github.com/sheetdb/go-sheetdb/tests/common"
)

// getAPITestBackends returns the file-based backends, which need no
// credentials and always run.
func getAPITestBackends(t *testing.T) []common.BackendTestCase {
	t.Helper()

	var cases []common.BackendTestCase

	csvPath := filepath.Join(t.TempDir(), "api_test.csv")
	csvBackend, err := csvfile.New(&csvfile.Config{FilePath: csvPath})
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	cases = append(cases, common.BackendTestCase{
		Name:        "CSV",
		Backend:     csvBackend,
		Description: fmt.Sprintf("CSV file: %s", csvPath),
	})

	excelPath := filepath.Join(t.TempDir(), "api_test.xlsx")
	excelBackend, err := excel.New(&excel.Config{FilePath: excelPath})
	if err != nil {
		t.Fatalf("Failed to create Excel backend: %v", err)
	}
	cases = append(cases, common.BackendTestCase{
		Name:        "Excel",
		Backend:     excelBackend,
		Description: fmt.Sprintf("Excel file: %s", excelPath),
	})

	return cases
}

func TestBackendCRUD(t *testing.T) {
	for _, tc := range getAPITestBackends(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Logf("Testing %s", tc.Description)
			common.RunCRUDSuite(t, tc.Backend)
		})
	}
}

func TestBackendAsync(t *testing.T) {
	for _, tc := range getAPITestBackends(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Logf("Testing %s", tc.Description)
			common.RunAsyncSuite(t, tc.Backend)
		})
	}
}
