// Package common provides a shared CRUD test suite run against every
// backend. Each medium's test package builds its backends and hands
// them to RunCRUDSuite.
package common

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	sheetdb "github.com/sheetdb/go-sheetdb"
)

// BackendTestCase pairs a backend with a human-readable description.
type BackendTestCase struct {
	Name        string
	Backend     sheetdb.Backend
	Description string
}

// Contact is the record type the suite stores on every medium.
type Contact struct {
	ID    string
	Name  string
	Email string
	Age   int64
}

func (c *Contact) TableName() string { return "Contacts" }

func (c *Contact) FieldMap() map[string]string {
	return map[string]string{
		"id":    "Contact ID",
		"name":  "Name",
		"email": "Email",
		"age":   "Age",
	}
}

func (c *Contact) KeyFields() []string { return []string{"id"} }

func (c *Contact) MarshalFields() (*sheetdb.Fields, error) {
	f := sheetdb.NewFields()
	f.Set("id", c.ID)
	f.Set("name", c.Name)
	f.Set("email", c.Email)
	f.SetInt64("age", c.Age)
	return f, nil
}

func (c *Contact) UnmarshalFields(f *sheetdb.Fields) error {
	id, ok := f.Get("id")
	if !ok || id == "" {
		return errors.New("contact requires an id")
	}
	c.ID = id
	c.Name = f.GetString("name", "")
	c.Email = f.GetString("email", "")
	c.Age = f.GetInt64("age", 0)
	return nil
}

// NewContact creates a contact with a random ID.
func NewContact(name, email string, age int64) *Contact {
	return &Contact{ID: uuid.NewString(), Name: name, Email: email, Age: age}
}

// RunCRUDSuite exercises every table operation against one backend. The
// table is cleared first so the suite can run against shared media like
// a test spreadsheet.
func RunCRUDSuite(t *testing.T, backend sheetdb.Backend) {
	ctx := context.Background()
	store := sheetdb.NewStore(backend, nil)
	table := sheetdb.NewTable[Contact, *Contact](store)

	if err := table.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() before suite error = %v", err)
	}
	store.InvalidateTable(table.Name())

	alice := NewContact("Alice", "alice@example.com", 30)
	bob := NewContact("Bob", "bob@example.com", 25)
	carol := NewContact("Carol", "carol@example.com", 30)

	t.Run("insert many", func(t *testing.T) {
		if err := table.InsertMany(ctx, []*Contact{alice, bob, carol}); err != nil {
			t.Fatalf("InsertMany() error = %v", err)
		}
	})

	t.Run("get all preserves insertion order", func(t *testing.T) {
		all, err := table.GetAll(ctx, nil)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("GetAll() returned %d records, want 3", len(all))
		}
		for i, want := range []*Contact{alice, bob, carol} {
			if all[i].ID != want.ID {
				t.Errorf("record %d = %q, want %q", i, all[i].Name, want.Name)
			}
		}
	})

	t.Run("get all filtered", func(t *testing.T) {
		thirty, err := table.GetAll(ctx, sheetdb.Filters{"age": "30"})
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(thirty) != 2 {
			t.Fatalf("GetAll(age=30) returned %d records, want 2", len(thirty))
		}
		if thirty[0].ID != alice.ID || thirty[1].ID != carol.ID {
			t.Errorf("GetAll(age=30) = %v, %v", thirty[0].Name, thirty[1].Name)
		}
	})

	t.Run("get one", func(t *testing.T) {
		got, err := table.GetOne(ctx, sheetdb.Filters{"id": bob.ID})
		if err != nil {
			t.Fatalf("GetOne() error = %v", err)
		}
		if got.Name != "Bob" || got.Age != 25 {
			t.Errorf("GetOne() = %+v", got)
		}

		if _, err := table.GetOne(ctx, sheetdb.Filters{"id": "missing"}); !errors.Is(err, sheetdb.ErrNotFound) {
			t.Errorf("GetOne(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		updated, err := table.Update(ctx, sheetdb.Filters{"id": bob.ID}, sheetdb.Changes{"age": "26"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Age != 26 || updated.Name != "Bob" {
			t.Errorf("Update() = %+v", updated)
		}

		got, err := table.GetOne(ctx, sheetdb.Filters{"id": bob.ID})
		if err != nil {
			t.Fatalf("GetOne() after update error = %v", err)
		}
		if got.Age != 26 {
			t.Errorf("age after update = %d, want 26", got.Age)
		}

		// Neighbors untouched.
		other, err := table.GetOne(ctx, sheetdb.Filters{"id": alice.ID})
		if err != nil {
			t.Fatalf("GetOne(alice) error = %v", err)
		}
		if other.Age != 30 {
			t.Errorf("alice age = %d, want 30", other.Age)
		}
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := table.Delete(ctx, sheetdb.Filters{"id": alice.ID})
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if deleted.Name != "Alice" {
			t.Errorf("Delete() = %+v, want Alice", deleted)
		}

		all, err := table.GetAll(ctx, nil)
		if err != nil {
			t.Fatalf("GetAll() after delete error = %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("GetAll() returned %d records, want 2", len(all))
		}
		if all[0].ID != bob.ID || all[1].ID != carol.ID {
			t.Errorf("order after delete = %v, %v", all[0].Name, all[1].Name)
		}

		if _, err := table.Delete(ctx, sheetdb.Filters{"id": alice.ID}); !errors.Is(err, sheetdb.ErrNotFound) {
			t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete all", func(t *testing.T) {
		if err := table.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}
		all, err := table.GetAll(ctx, nil)
		if err != nil {
			t.Fatalf("GetAll() after DeleteAll error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("GetAll() = %d records, want 0", len(all))
		}

		// Header row survives; a fresh insert reuses it.
		if err := table.Insert(ctx, NewContact("Dave", "dave@example.com", 40)); err != nil {
			t.Fatalf("Insert() after DeleteAll error = %v", err)
		}
		all, err = table.GetAll(ctx, nil)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(all) != 1 || all[0].Name != "Dave" {
			t.Errorf("GetAll() = %+v, want just Dave", all)
		}
	})
}

// RunAsyncSuite exercises the async facade against one backend.
func RunAsyncSuite(t *testing.T, backend sheetdb.Backend) {
	ctx := context.Background()
	store := sheetdb.NewStore(backend, nil)
	table := sheetdb.NewTable[Contact, *Contact](store)

	if err := table.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() before suite error = %v", err)
	}
	store.InvalidateTable(table.Name())

	async := sheetdb.NewAsync[Contact, *Contact](table, 8)
	defer async.Close()

	erin := NewContact("Erin", "erin@example.com", 35)

	fInsert := async.Insert(ctx, erin)
	fUpdate := async.Update(ctx, sheetdb.Filters{"id": erin.ID}, sheetdb.Changes{"age": "36"})
	fGet := async.GetOne(ctx, sheetdb.Filters{"id": erin.ID})

	if _, err := fInsert.Wait(ctx); err != nil {
		t.Fatalf("async insert error = %v", err)
	}
	if _, err := fUpdate.Wait(ctx); err != nil {
		t.Fatalf("async update error = %v", err)
	}
	got, err := fGet.Wait(ctx)
	if err != nil {
		t.Fatalf("async get error = %v", err)
	}
	if got.Age != 36 {
		t.Errorf("age after async chain = %d, want 36", got.Age)
	}

	if _, err := async.DeleteAll(ctx).Wait(ctx); err != nil {
		t.Errorf("async delete all error = %v", err)
	}
}
