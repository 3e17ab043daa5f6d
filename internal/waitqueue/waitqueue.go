// Package waitqueue holds callers waiting for the outcome of a single
// in-flight asynchronous operation, so concurrent callers share one result
// instead of duplicating the work.
package waitqueue

import (
	"context"
	"sync"
)

type outcome[T any] struct {
	value T
	err   error
}

// Queue is a FIFO of pending waiters. Each waiter is settled exactly once by
// the next ResolveAll or RejectAll call.
type Queue[T any] struct {
	mu      sync.Mutex
	waiters []chan outcome[T]
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Waiter is the handle for one enqueued caller.
type Waiter[T any] struct {
	ch chan outcome[T]
}

// Enqueue registers a waiter without blocking. Callers deciding whether to
// wait under their own lock enqueue first, so a settle landing between the
// decision and the wait cannot strand them.
func (q *Queue[T]) Enqueue() *Waiter[T] {
	w := &Waiter[T]{ch: make(chan outcome[T], 1)}

	q.mu.Lock()
	q.waiters = append(q.waiters, w.ch)
	q.mu.Unlock()

	return w
}

// Wait blocks until the in-flight operation settles or ctx is cancelled.
func (w *Waiter[T]) Wait(ctx context.Context) (T, error) {
	select {
	case out := <-w.ch:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait enqueues the caller and blocks until the in-flight operation settles
// or ctx is cancelled.
func (q *Queue[T]) Wait(ctx context.Context) (T, error) {
	return q.Enqueue().Wait(ctx)
}

// ResolveAll settles every pending waiter with value.
func (q *Queue[T]) ResolveAll(value T) {
	q.settle(outcome[T]{value: value})
}

// RejectAll settles every pending waiter with err.
func (q *Queue[T]) RejectAll(err error) {
	q.settle(outcome[T]{err: err})
}

// Len returns the number of pending waiters.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

func (q *Queue[T]) settle(out outcome[T]) {
	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()

	for _, ch := range waiters {
		ch <- out
	}
}
