// Package stream provides the live-subscription hub. A consumer
// subscribes to a user's expense set and receives snapshots whenever it
// changes. Delivery is monotonically freshening: every snapshot carries
// a per-user version, stale deliveries are dropped, and a slow consumer
// is only ever caught up to the newest snapshot, never an older one.
package stream

import (
	"context"
	"sync"

	"spendwise/internal/core"
)

// Snapshot is one observed state of a user's expense set.
type Snapshot struct {
	Version  uint64
	Expenses []core.Expense
}

// Hub fans snapshots out to per-user subscriptions.
type Hub struct {
	mu       sync.Mutex
	versions map[string]uint64
	subs     map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		versions: make(map[string]uint64),
		subs:     make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscription for the user's expense set. The
// subscription is released when ctx is done or Close is called;
// releasing stops delivery and frees hub resources.
func (h *Hub) Subscribe(ctx context.Context, userID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		userID: userID,
		ch:     make(chan Snapshot, 1),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.done:
				// Released via Close; the watcher must not outlive it.
			}
		}()
	}
	return sub
}

// Publish records a new state of the user's expense set, stamps it with
// the next version, and delivers it to all of the user's subscriptions.
// It returns the assigned version.
func (h *Hub) Publish(userID string, expenses []core.Expense) uint64 {
	h.mu.Lock()
	h.versions[userID]++
	version := h.versions[userID]
	targets := make([]*Subscription, 0, len(h.subs[userID]))
	for sub := range h.subs[userID] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	snap := Snapshot{Version: version, Expenses: expenses}
	for _, sub := range targets {
		sub.offer(snap)
	}
	return version
}

// Version returns the user's current snapshot version. Version zero
// means nothing has been published yet.
func (h *Hub) Version(userID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.versions[userID]
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
}

// Subscription is one consumer's live view of a user's expense set.
type Subscription struct {
	hub    *Hub
	userID string
	ch     chan Snapshot
	done   chan struct{}

	mu     sync.Mutex
	latest uint64
	closed bool
}

// Updates returns the snapshot channel. The channel is closed when the
// subscription is released.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.hub.unsubscribe(s)
	close(s.ch)
}

// offer delivers a snapshot, dropping it when it is not newer than the
// last accepted one. A pending undelivered snapshot is replaced rather
// than queued behind, so a consumer never observes versions out of
// order.
func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || snap.Version <= s.latest {
		return
	}
	s.latest = snap.Version
	for {
		select {
		case s.ch <- snap:
			return
		default:
			// Consumer has not drained the previous snapshot; discard
			// it in favor of the newer one.
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
