package services

import (
	"context"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/identity"
	"spendwise/internal/store"
	"spendwise/internal/stream"
)

// Dashboard is one consistent rendering of a user's spending: the
// expense list, its aggregation, and the budget view derived from it.
type Dashboard struct {
	Version  uint64
	Expenses []core.Expense
	Summary  core.Summary
	Budget   BudgetOverview
}

// DashboardService assembles dashboards and serves them live.
type DashboardService struct {
	store   store.Store
	hub     *stream.Hub
	budgets *BudgetService
	now     func() time.Time
}

func NewDashboardService(st store.Store, hub *stream.Hub, budgets *BudgetService) *DashboardService {
	return &DashboardService{store: st, hub: hub, budgets: budgets, now: time.Now}
}

// Overview builds the dashboard from the store's current state.
func (s *DashboardService) Overview(ctx context.Context, sess identity.Session) (Dashboard, error) {
	expenses, err := s.store.ListExpenses(ctx, sess.UserID())
	if err != nil {
		return Dashboard{}, err
	}
	return s.assemble(ctx, sess, s.hub.Version(sess.UserID()), expenses)
}

// Watch streams dashboards for the session's user until ctx is done.
// The first dashboard reflects the current state; each subsequent one
// is driven by a hub snapshot, so versions only move forward. The
// returned channel closes when the subscription is released.
func (s *DashboardService) Watch(ctx context.Context, sess identity.Session) (<-chan Dashboard, error) {
	sub := s.hub.Subscribe(ctx, sess.UserID())

	initial, err := s.Overview(ctx, sess)
	if err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan Dashboard, 1)
	out <- initial
	go func() {
		defer close(out)
		last := initial.Version
		for snap := range sub.Updates() {
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			d, err := s.assemble(ctx, sess, snap.Version, snap.Expenses)
			if err != nil {
				// Budget read failed; skip this snapshot, the next
				// change re-derives the view.
				continue
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *DashboardService) assemble(ctx context.Context, sess identity.Session, version uint64, expenses []core.Expense) (Dashboard, error) {
	budget, err := s.budgets.Overview(ctx, sess, s.now())
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Version:  version,
		Expenses: expenses,
		Summary:  core.Aggregate(expenses),
		Budget:   budget,
	}, nil
}
