package sheetdb

import (
	"context"
	"fmt"
	"log/slog"
)

// Filters selects records by exact field-value equality. All entries must
// match. Any field may be filtered on, not only key fields.
type Filters map[string]string

// Match reports whether all filter entries equal the record's fields.
func (f Filters) Match(m Model) bool {
	if len(f) == 0 {
		return true
	}

	fields, err := m.MarshalFields()
	if err != nil {
		return false
	}

	for name, want := range f {
		got, ok := fields.Get(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Changes is a partial update: field name to new value.
type Changes map[string]string

// Store drives a Backend with the shared scan/filter/map algorithm. All
// typed operations go through Table; Store itself exposes the operations
// that take record instances rather than a type.
//
// A Store is single-flight per call and provides no coordination between
// concurrent callers mutating the same table: the last writer wins.
type Store struct {
	backend Backend
	cache   *HeaderCache
	policy  SchemaPolicy
	logger  *slog.Logger
}

// NewStore creates a Store over the given backend. opts may be nil.
func NewStore(backend Backend, opts *Options) *Store {
	if opts == nil {
		opts = &Options{}
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewHeaderCache()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		backend: backend,
		cache:   cache,
		policy:  opts.SchemaPolicy,
		logger:  logger,
	}
}

// Backend returns the store's backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Cache returns the store's header cache.
func (s *Store) Cache() *HeaderCache {
	return s.cache
}

// InvalidateTable drops the cached header row for one table. Callers use
// this after changing the schema through another process or tool.
func (s *Store) InvalidateTable(table string) {
	s.cache.Invalidate(s.backend.ID(), table)
}

// Insert appends a single record to its table.
func (s *Store) Insert(ctx context.Context, m Model) error {
	return s.InsertMany(ctx, m)
}

// InsertMany appends records in input order. All records must share the
// same table and field map; only the first record's mapping is consulted.
// If the table has no header row yet, one is created from the first
// record's mapped field names in declaration order before any data row.
func (s *Store) InsertMany(ctx context.Context, models ...Model) error {
	if len(models) == 0 {
		return fmt.Errorf("%w: insert requires at least one record", ErrValidation)
	}

	table := models[0].TableName()
	fieldMap := models[0].FieldMap()

	fieldsList := make([]*Fields, len(models))
	for i, m := range models {
		fields, err := m.MarshalFields()
		if err != nil {
			return fmt.Errorf("%w: marshal record %d: %v", ErrValidation, i, err)
		}
		fieldsList[i] = fields
	}

	rev, err := inverseFieldMap(fieldMap)
	if err != nil {
		return err
	}

	headers, err := s.headersFor(ctx, table)
	if err != nil {
		return err
	}

	if len(headers) == 0 {
		headers = mappedHeaders(fieldsList[0], fieldMap)
		if err := s.backend.CreateTable(ctx, table, headers); err != nil {
			return err
		}
		s.cache.Set(s.backend.ID(), table, headers)
		s.logger.Info("created table", "table", table, "headers", headers)
	}

	headers, err = s.applySchemaPolicy(ctx, table, headers, fieldsList, fieldMap)
	if err != nil {
		return err
	}

	rows := make([][]string, len(fieldsList))
	for i, fields := range fieldsList {
		rows[i] = projectRow(headers, fields, rev)
	}

	if err := s.backend.AppendRows(ctx, table, rows); err != nil {
		return err
	}

	s.logger.Info("inserted rows", "table", table, "count", len(rows))
	return nil
}

// headersFor resolves the table's header row through the cache, reading
// the medium on a miss. An absent table yields an empty header set, not
// an error.
func (s *Store) headersFor(ctx context.Context, table string) ([]string, error) {
	if headers, ok := s.cache.Get(s.backend.ID(), table); ok {
		return headers, nil
	}

	headers, err := s.backend.Headers(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, nil
	}

	s.cache.Set(s.backend.ID(), table, headers)
	return headers, nil
}

// applySchemaPolicy handles record fields whose headers are missing from
// the table's header row: drop silently, fail, or extend the header row.
func (s *Store) applySchemaPolicy(ctx context.Context, table string, headers []string, fieldsList []*Fields, fieldMap map[string]string) ([]string, error) {
	if s.policy == SchemaDrop {
		return headers, nil
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	var added []string
	for _, fields := range fieldsList {
		for _, name := range fields.Names() {
			header := headerFor(fieldMap, name)
			if known[header] {
				continue
			}
			if s.policy == SchemaStrict {
				return nil, fmt.Errorf("%w: field %q (header %q) not in header row of table %q", ErrValidation, name, header, table)
			}
			known[header] = true
			added = append(added, header)
		}
	}

	if len(added) == 0 {
		return headers, nil
	}

	extended := make([]string, 0, len(headers)+len(added))
	extended = append(extended, headers...)
	extended = append(extended, added...)

	if err := s.backend.WriteHeader(ctx, table, extended); err != nil {
		return nil, err
	}
	s.cache.Set(s.backend.ID(), table, extended)
	s.logger.Info("extended header row", "table", table, "added", added)

	return extended, nil
}

// mappedHeaders derives a header row from a record's field names in
// declaration order, applying the field map.
func mappedHeaders(fields *Fields, fieldMap map[string]string) []string {
	names := fields.Names()
	headers := make([]string, len(names))
	for i, name := range names {
		headers[i] = headerFor(fieldMap, name)
	}
	return headers
}

// projectRow aligns a record's fields to the header row. Headers the
// record does not populate become empty strings; fields without a header
// are dropped.
func projectRow(headers []string, fields *Fields, inverse map[string]string) []string {
	row := make([]string, len(headers))
	for i, header := range headers {
		field, ok := inverse[header]
		if !ok {
			field = header
		}
		row[i], _ = fields.Get(field)
	}
	return row
}

// decodeRow reverse-maps a storage row into Fields keyed by model field
// names. Rows shorter than the header row read as empty values; headers
// absent from the inverse map fall back to the header name itself.
func decodeRow(headers []string, row []string, inverse map[string]string) *Fields {
	fields := NewFields()
	for i, header := range headers {
		if header == "" {
			continue
		}
		field, ok := inverse[header]
		if !ok {
			field = header
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		fields.Set(field, value)
	}
	return fields
}
