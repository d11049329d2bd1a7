package stream

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/core"
)

func expenses(n int) []core.Expense {
	out := make([]core.Expense, n)
	for i := range out {
		out[i] = core.Expense{
			UserID:   "u1",
			Amount:   core.Money{Cents: 100},
			Category: "Food",
			Date:     time.Now(),
		}
	}
	return out
}

func TestPublishDelivers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")
	defer sub.Close()

	v := h.Publish("u1", expenses(2))
	if v != 1 {
		t.Fatalf("first version = %d, want 1", v)
	}

	select {
	case snap := <-sub.Updates():
		if snap.Version != 1 || len(snap.Expenses) != 2 {
			t.Fatalf("unexpected snapshot: version=%d len=%d", snap.Version, len(snap.Expenses))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestVersionsMonotonic(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")
	defer sub.Close()

	for i := 0; i < 5; i++ {
		h.Publish("u1", expenses(i))
	}

	var last uint64
	deadline := time.After(time.Second)
	for {
		select {
		case snap, ok := <-sub.Updates():
			if !ok {
				t.Fatal("channel closed unexpectedly")
			}
			if snap.Version <= last {
				t.Fatalf("version %d delivered after %d", snap.Version, last)
			}
			last = snap.Version
			if snap.Version == 5 {
				return
			}
		case <-deadline:
			if last == 0 {
				t.Fatal("no snapshot delivered")
			}
			// Coalescing may skip intermediate versions, but the final
			// state must arrive.
			t.Fatalf("final version never delivered, last seen %d", last)
		}
	}
}

func TestSlowConsumerGetsNewest(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")
	defer sub.Close()

	// Nobody draining: the pending snapshot is replaced, not queued.
	h.Publish("u1", expenses(1))
	h.Publish("u1", expenses(2))
	h.Publish("u1", expenses(3))

	select {
	case snap := <-sub.Updates():
		if snap.Version != 3 {
			t.Fatalf("slow consumer saw version %d, want newest (3)", snap.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestStaleOfferDropped(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")
	defer sub.Close()

	// Simulate an out-of-order delivery arriving after a newer one.
	sub.offer(Snapshot{Version: 2, Expenses: expenses(2)})
	sub.offer(Snapshot{Version: 1, Expenses: expenses(1)})

	snap := <-sub.Updates()
	if snap.Version != 2 {
		t.Fatalf("got version %d, want 2", snap.Version)
	}
	select {
	case snap := <-sub.Updates():
		t.Fatalf("stale snapshot delivered: version %d", snap.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextCancelReleases(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	sub := h.Subscribe(ctx, "u1")

	cancel()

	select {
	case _, ok := <-sub.Updates():
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not released after context cancel")
	}

	// Publishing after release must not panic or deliver.
	h.Publish("u1", expenses(1))

	h.mu.Lock()
	_, registered := h.subs["u1"]
	h.mu.Unlock()
	if registered {
		t.Fatal("subscription still registered after release")
	}
}

func TestCloseStopsContextWatcher(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")

	sub.Close()

	// The watcher goroutine selects on done; Close must signal it even
	// when the context never fires.
	select {
	case <-sub.done:
	case <-time.After(time.Second):
		t.Fatal("close did not signal the context watcher")
	}
}

func TestCloseIdempotent(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(context.Background(), "u1")
	sub.Close()
	sub.Close()
}

func TestUsersIsolated(t *testing.T) {
	h := NewHub()
	sub1 := h.Subscribe(context.Background(), "u1")
	defer sub1.Close()
	sub2 := h.Subscribe(context.Background(), "u2")
	defer sub2.Close()

	h.Publish("u1", expenses(1))

	select {
	case <-sub1.Updates():
	case <-time.After(time.Second):
		t.Fatal("u1 snapshot not delivered")
	}
	select {
	case <-sub2.Updates():
		t.Fatal("u2 received u1's snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}
