package sheetdb

import (
	"context"
	"fmt"
	"sync"
)

// Future holds the eventual result of an asynchronous operation.
type Future[V any] struct {
	done chan struct{}
	val  V
	err  error
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

func (f *Future[V]) resolve(val V, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Done is closed when the result is available.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done. A caller
// timeout on ctx is the only cancellation mechanism: the operation itself
// still runs to completion on the worker.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Async runs table operations on a single worker goroutine, returning a
// Future per call. Operations issued by one caller execute in issue
// order; overlapping calls from distinct callers interleave at operation
// granularity with no further coordination, matching the synchronous
// store's last-writer-wins semantics.
type Async[T any, PT ModelPtr[T]] struct {
	table *Table[T, PT]
	jobs  chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewAsync wraps a table in an asynchronous facade. buffer is the queue
// depth before issuing callers block.
func NewAsync[T any, PT ModelPtr[T]](table *Table[T, PT], buffer int) *Async[T, PT] {
	if buffer < 0 {
		buffer = 0
	}

	a := &Async[T, PT]{
		table: table,
		jobs:  make(chan func(), buffer),
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for job := range a.jobs {
			job()
		}
	}()

	return a
}

// enqueue submits a job, or reports failure if the facade is closed.
func (a *Async[T, PT]) enqueue(job func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}
	a.jobs <- job
	return true
}

func errClosed() error {
	return fmt.Errorf("%w: async store is closed", ErrAccess)
}

// Insert appends a record asynchronously.
func (a *Async[T, PT]) Insert(ctx context.Context, rec PT) *Future[struct{}] {
	f := newFuture[struct{}]()
	ok := a.enqueue(func() {
		f.resolve(struct{}{}, a.table.Insert(ctx, rec))
	})
	if !ok {
		f.resolve(struct{}{}, errClosed())
	}
	return f
}

// InsertMany appends records asynchronously.
func (a *Async[T, PT]) InsertMany(ctx context.Context, recs []PT) *Future[struct{}] {
	f := newFuture[struct{}]()
	ok := a.enqueue(func() {
		f.resolve(struct{}{}, a.table.InsertMany(ctx, recs))
	})
	if !ok {
		f.resolve(struct{}{}, errClosed())
	}
	return f
}

// GetAll retrieves records asynchronously.
func (a *Async[T, PT]) GetAll(ctx context.Context, filters Filters) *Future[[]PT] {
	f := newFuture[[]PT]()
	ok := a.enqueue(func() {
		f.resolve(a.table.GetAll(ctx, filters))
	})
	if !ok {
		f.resolve(nil, errClosed())
	}
	return f
}

// GetOne retrieves the first matching record asynchronously.
func (a *Async[T, PT]) GetOne(ctx context.Context, filters Filters) *Future[PT] {
	f := newFuture[PT]()
	ok := a.enqueue(func() {
		f.resolve(a.table.GetOne(ctx, filters))
	})
	if !ok {
		f.resolve(nil, errClosed())
	}
	return f
}

// Update patches the first matching record asynchronously.
func (a *Async[T, PT]) Update(ctx context.Context, filters Filters, changes Changes) *Future[PT] {
	f := newFuture[PT]()
	ok := a.enqueue(func() {
		f.resolve(a.table.Update(ctx, filters, changes))
	})
	if !ok {
		f.resolve(nil, errClosed())
	}
	return f
}

// Delete removes the first matching record asynchronously.
func (a *Async[T, PT]) Delete(ctx context.Context, filters Filters) *Future[PT] {
	f := newFuture[PT]()
	ok := a.enqueue(func() {
		f.resolve(a.table.Delete(ctx, filters))
	})
	if !ok {
		f.resolve(nil, errClosed())
	}
	return f
}

// DeleteAll clears the table asynchronously.
func (a *Async[T, PT]) DeleteAll(ctx context.Context) *Future[struct{}] {
	f := newFuture[struct{}]()
	ok := a.enqueue(func() {
		f.resolve(struct{}{}, a.table.DeleteAll(ctx))
	})
	if !ok {
		f.resolve(struct{}{}, errClosed())
	}
	return f
}

// Close drains queued operations and stops the worker. Operations issued
// after Close resolve with an error.
func (a *Async[T, PT]) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()

	a.wg.Wait()
}
