package sheetdb

import (
	"context"
	"fmt"
)

// ModelPtr constrains PT to a pointer to T implementing Model, so tables
// can materialize fresh records while callers keep concrete types.
type ModelPtr[T any] interface {
	Model
	*T
}

// Table is the typed facade over a Store for one record type.
type Table[T any, PT ModelPtr[T]] struct {
	store    *Store
	name     string
	fieldMap map[string]string
}

// NewTable binds a record type to a store. Table identity and field map
// are fixed per type and captured once here.
func NewTable[T any, PT ModelPtr[T]](store *Store) *Table[T, PT] {
	var zero T
	proto := PT(&zero)

	return &Table[T, PT]{
		store:    store,
		name:     proto.TableName(),
		fieldMap: proto.FieldMap(),
	}
}

// Name returns the table name.
func (t *Table[T, PT]) Name() string {
	return t.name
}

// Insert appends a single record.
func (t *Table[T, PT]) Insert(ctx context.Context, rec PT) error {
	return t.store.Insert(ctx, rec)
}

// InsertMany appends records in input order.
func (t *Table[T, PT]) InsertMany(ctx context.Context, recs []PT) error {
	models := make([]Model, len(recs))
	for i, r := range recs {
		models[i] = r
	}
	return t.store.InsertMany(ctx, models...)
}

// scanned pairs a parsed record with the physical index of its data row,
// so mutations target the row that was actually matched even when
// unparseable rows were skipped during the scan.
type scanned[T any, PT ModelPtr[T]] struct {
	rec   PT
	index int
}

func (t *Table[T, PT]) scan(ctx context.Context) ([]scanned[T, PT], []string, error) {
	headers, err := t.store.headersFor(ctx, t.name)
	if err != nil {
		return nil, nil, err
	}
	if len(headers) == 0 {
		return nil, nil, nil
	}

	rows, err := t.store.backend.ReadRows(ctx, t.name)
	if err != nil {
		return nil, nil, err
	}

	inverse, err := inverseFieldMap(t.fieldMap)
	if err != nil {
		return nil, nil, err
	}

	results := make([]scanned[T, PT], 0, len(rows))
	for i, row := range rows {
		fields := decodeRow(headers, row, inverse)

		var rec T
		p := PT(&rec)
		if err := p.UnmarshalFields(fields); err != nil {
			// Best-effort read: a malformed row is logged and skipped,
			// never propagated.
			t.store.logger.Warn("skipping unparseable row",
				"table", t.name, "row", i+2, "error", err)
			continue
		}

		results = append(results, scanned[T, PT]{rec: p, index: i})
	}

	return results, headers, nil
}

// GetAll returns all parsed records in insertion order, optionally
// filtered. An absent table yields an empty result, not an error.
func (t *Table[T, PT]) GetAll(ctx context.Context, filters Filters) ([]PT, error) {
	items, _, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}

	recs := make([]PT, 0, len(items))
	for _, item := range items {
		if filters.Match(item.rec) {
			recs = append(recs, item.rec)
		}
	}
	return recs, nil
}

// GetOne returns the first record matching the filters in scan order.
func (t *Table[T, PT]) GetOne(ctx context.Context, filters Filters) (PT, error) {
	items, _, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if filters.Match(item.rec) {
			return item.rec, nil
		}
	}

	return nil, fmt.Errorf("%w: table %q, filters %v", ErrNotFound, t.name, filters)
}

// Update applies changes to the first record matching the filters and
// patches its row in place. The updated record is re-parsed through the
// model, so a change violating its invariants fails without writing.
// Exactly one record is mutated; later matches are left untouched.
func (t *Table[T, PT]) Update(ctx context.Context, filters Filters, changes Changes) (PT, error) {
	items, headers, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !filters.Match(item.rec) {
			continue
		}

		fields, err := item.rec.MarshalFields()
		if err != nil {
			return nil, fmt.Errorf("%w: marshal matched record: %v", ErrValidation, err)
		}
		for name, value := range changes {
			fields.Set(name, value)
		}

		var updated T
		p := PT(&updated)
		if err := p.UnmarshalFields(fields); err != nil {
			return nil, fmt.Errorf("%w: update produces invalid record: %v", ErrValidation, err)
		}

		outFields, err := p.MarshalFields()
		if err != nil {
			return nil, fmt.Errorf("%w: marshal updated record: %v", ErrValidation, err)
		}

		inverse, err := inverseFieldMap(t.fieldMap)
		if err != nil {
			return nil, err
		}

		row := projectRow(headers, outFields, inverse)
		if err := t.store.backend.UpdateRow(ctx, t.name, item.index, row); err != nil {
			return nil, err
		}

		t.store.logger.Info("updated record", "table", t.name, "row", item.index+2)
		return p, nil
	}

	return nil, fmt.Errorf("%w: table %q, filters %v", ErrNotFound, t.name, filters)
}

// Delete removes the first record matching the filters and returns its
// snapshot. The target row is resolved by scan index, never derived from
// an identity field.
func (t *Table[T, PT]) Delete(ctx context.Context, filters Filters) (PT, error) {
	items, _, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !filters.Match(item.rec) {
			continue
		}

		if err := t.store.backend.DeleteRow(ctx, t.name, item.index); err != nil {
			return nil, err
		}

		t.store.logger.Info("deleted record", "table", t.name, "row", item.index+2)
		return item.rec, nil
	}

	return nil, fmt.Errorf("%w: table %q, filters %v", ErrNotFound, t.name, filters)
}

// DeleteAll removes every data row, keeping the header row intact. It is
// a no-op if the table is absent or already empty.
func (t *Table[T, PT]) DeleteAll(ctx context.Context) error {
	if err := t.store.backend.ClearRows(ctx, t.name); err != nil {
		return err
	}

	t.store.logger.Info("cleared table", "table", t.name)
	return nil
}
