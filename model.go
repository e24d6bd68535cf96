package sheetdb

import "fmt"

// Model is the capability interface a record type implements to be stored
// in a table. A type maps 1:1 to a table: TableName names it, FieldMap
// translates field names to column headers (nil or missing entries mean
// the field name is the header), and Marshal/UnmarshalFields move values
// between the typed record and its row form.
type Model interface {
	// TableName returns the logical table (sheet) name for this type.
	TableName() string

	// FieldMap maps model field names to storage column headers.
	// A nil map or a missing entry means the field name is used as-is.
	FieldMap() map[string]string

	// KeyFields returns the field names identifying a record.
	// Filters are not limited to key fields; this is informational.
	KeyFields() []string

	// MarshalFields returns the record's fields in declaration order.
	MarshalFields() (*Fields, error)

	// UnmarshalFields parses and validates field values into the record.
	UnmarshalFields(*Fields) error
}

// inverseFieldMap builds the header-to-field mapping. The field map must
// be a true inverse: two fields mapping to the same header would make
// reverse mapping ambiguous.
func inverseFieldMap(fieldMap map[string]string) (map[string]string, error) {
	inv := make(map[string]string, len(fieldMap))
	for field, header := range fieldMap {
		if prev, ok := inv[header]; ok {
			return nil, fmt.Errorf("%w: fields %q and %q both map to header %q", ErrValidation, prev, field, header)
		}
		inv[header] = field
	}
	return inv, nil
}

// headerFor resolves the storage header for a field name.
func headerFor(fieldMap map[string]string, field string) string {
	if h, ok := fieldMap[field]; ok {
		return h
	}
	return field
}
