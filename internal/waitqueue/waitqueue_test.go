package waitqueue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"streamglass/internal/waitqueue"
)

func TestResolveAllSettlesEveryWaiter(t *testing.T) {
	q := waitqueue.New[string]()

	var wg sync.WaitGroup
	results := make([]string, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = q.Wait(context.Background())
		}(i)
	}

	// Give the goroutines a moment to enqueue.
	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("waiters never enqueued, have %d", q.Len())
		}
		time.Sleep(time.Millisecond)
	}

	q.ResolveAll("done")
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("waiter %d returned error: %v", i, errs[i])
		}
		if results[i] != "done" {
			t.Fatalf("waiter %d got %q", i, results[i])
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue drained, got %d waiters", q.Len())
	}
}

func TestRejectAllSettlesWithError(t *testing.T) {
	q := waitqueue.New[int]()
	boom := errors.New("boom")

	done := make(chan error, 1)
	go func() {
		_, err := q.Wait(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("waiter never enqueued")
		}
		time.Sleep(time.Millisecond)
	}

	q.RejectAll(boom)

	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestWaitHonoursContextCancellation(t *testing.T) {
	q := waitqueue.New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnqueueBeforeSettleIsNotStranded(t *testing.T) {
	q := waitqueue.New[int]()

	// The waiter is registered before Wait is called, so a settle between
	// the two still reaches it.
	w := q.Enqueue()
	q.ResolveAll(7)

	v, err := w.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait returned error: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
}
