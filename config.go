package sheetdb

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaPolicy controls what happens when a record carries a field whose
// header is not part of the table's existing header row.
type SchemaPolicy int

const (
	// SchemaDrop silently drops fields absent from the header row.
	SchemaDrop SchemaPolicy = iota
	// SchemaStrict rejects records carrying unknown fields.
	SchemaStrict
	// SchemaExtend appends new headers to the header row.
	SchemaExtend
)

func (p SchemaPolicy) String() string {
	switch p {
	case SchemaDrop:
		return "drop"
	case SchemaStrict:
		return "strict"
	case SchemaExtend:
		return "extend"
	default:
		return fmt.Sprintf("SchemaPolicy(%d)", int(p))
	}
}

// ParseSchemaPolicy parses a policy name as used in configuration files.
func ParseSchemaPolicy(s string) (SchemaPolicy, error) {
	switch s {
	case "", "drop":
		return SchemaDrop, nil
	case "strict":
		return SchemaStrict, nil
	case "extend":
		return SchemaExtend, nil
	default:
		return SchemaDrop, fmt.Errorf("%w: unknown schema policy %q", ErrValidation, s)
	}
}

// Options configures a Store.
type Options struct {
	// SchemaPolicy for fields missing from the header row (default: drop).
	SchemaPolicy SchemaPolicy
	// Cache holds discovered headers; shared between stores if desired.
	// A new cache is created when nil.
	Cache *HeaderCache
	// Logger for row-skip warnings and table creation (default: slog.Default).
	Logger *slog.Logger
}

// FileConfig carries backend settings for demos and integration tests.
type FileConfig struct {
	CSVPath         string `yaml:"csv_path"`
	WorkbookPath    string `yaml:"workbook_path"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
	SchemaPolicy    string `yaml:"schema_policy"`
}

// LoadFileConfig reads a FileConfig from a YAML file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, err := ParseSchemaPolicy(cfg.SchemaPolicy); err != nil {
		return nil, err
	}

	return &cfg, nil
}
