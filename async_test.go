package sheetdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sheetdb "github.com/sheetdb/go-sheetdb"
)

func TestAsync_OperationsRunInIssueOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newCSVStore(t, nil)
	table := sheetdb.NewTable[user, *user](store)

	async := sheetdb.NewAsync[user, *user](table, 16)
	defer async.Close()

	// Issue a chain of dependent operations without waiting in between;
	// the worker must execute them in issue order.
	fInsert := async.InsertMany(ctx, []*user{
		{ID: 1, Name: "Alice", Email: "a@x.com"},
		{ID: 2, Name: "Bob", Email: "b@x.com"},
	})
	fUpdate := async.Update(ctx, sheetdb.Filters{"id": "2"}, sheetdb.Changes{"name": "Bobby"})
	fGet := async.GetOne(ctx, sheetdb.Filters{"id": "2"})
	fDelete := async.Delete(ctx, sheetdb.Filters{"id": "1"})
	fAll := async.GetAll(ctx, nil)

	if _, err := fInsert.Wait(ctx); err != nil {
		t.Fatalf("insert future error = %v", err)
	}
	if _, err := fUpdate.Wait(ctx); err != nil {
		t.Fatalf("update future error = %v", err)
	}

	got, err := fGet.Wait(ctx)
	if err != nil {
		t.Fatalf("get future error = %v", err)
	}
	if got.Name != "Bobby" {
		t.Errorf("get after update = %+v, want Bobby", got)
	}

	deleted, err := fDelete.Wait(ctx)
	if err != nil {
		t.Fatalf("delete future error = %v", err)
	}
	if deleted.Name != "Alice" {
		t.Errorf("delete = %+v, want Alice", deleted)
	}

	all, err := fAll.Wait(ctx)
	if err != nil {
		t.Fatalf("get all future error = %v", err)
	}
	if len(all) != 1 || all[0].Name != "Bobby" {
		t.Errorf("final state = %+v, want just Bobby", all)
	}
}

func TestAsync_WaitHonorsCallerTimeout(t *testing.T) {
	store, _ := newCSVStore(t, nil)
	table := sheetdb.NewTable[user, *user](store)

	async := sheetdb.NewAsync[user, *user](table, 0)
	defer async.Close()

	f := async.Insert(context.Background(), &user{ID: 1, Name: "Alice", Email: "a@x.com"})

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Wait(expired); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}

	// The operation itself still completed on the worker.
	ctx, cancelWait := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelWait()
	if _, err := f.Wait(ctx); err != nil {
		t.Errorf("Wait() after completion error = %v", err)
	}
}

func TestAsync_Close(t *testing.T) {
	ctx := context.Background()
	store, _ := newCSVStore(t, nil)
	table := sheetdb.NewTable[user, *user](store)

	async := sheetdb.NewAsync[user, *user](table, 4)

	f := async.Insert(ctx, &user{ID: 1, Name: "Alice", Email: "a@x.com"})
	async.Close()

	// Close drains queued work.
	if _, err := f.Wait(ctx); err != nil {
		t.Errorf("queued operation error = %v", err)
	}

	// Operations after Close resolve with an error instead of hanging.
	if _, err := async.GetAll(ctx, nil).Wait(ctx); !errors.Is(err, sheetdb.ErrAccess) {
		t.Errorf("GetAll() after Close error = %v, want ErrAccess", err)
	}

	// Closing twice is fine.
	async.Close()
}
