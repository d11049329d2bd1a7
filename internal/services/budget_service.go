package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/events"
	"spendwise/internal/identity"
	"spendwise/internal/log"
	"spendwise/internal/store"
	"spendwise/internal/stream"
)

// BudgetOverview is the spending-vs-limit view for one user.
type BudgetOverview struct {
	HasBudget   bool
	Limit       core.Money
	Spent       core.Money
	Remaining   core.Money
	Utilization float64
}

// BudgetService maintains the single budget record per user and derives
// the current-month spending view.
type BudgetService struct {
	store store.Store
	hub   *stream.Hub
	bus   EventPublisher
}

func NewBudgetService(st store.Store, hub *stream.Hub, bus EventPublisher) *BudgetService {
	return &BudgetService{store: st, hub: hub, bus: bus}
}

// Set upserts the user's budget. Validation happens before any store
// call; calling twice with the same arguments leaves the same state.
func (s *BudgetService) Set(ctx context.Context, sess identity.Session, amount core.Money, period core.Period) (core.Budget, error) {
	if period == "" {
		period = core.Monthly
	}
	b := core.Budget{
		ID:     sess.UserID(),
		UserID: sess.UserID(),
		Amount: amount,
		Period: period,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.NewValidationError("budget", err)
	}

	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	fields := log.NewFields().
		WithComponent(log.ComponentBudget).
		WithOperation(log.OpUpsert).
		WithUser(b.UserID)
	fields[log.FieldAmountCents] = b.Amount.Cents
	fields[log.FieldPeriod] = string(b.Period)
	slog.InfoContext(ctx, "Budget updated", fields.ToSlice()...)

	// A budget change alters the dashboard view even though the expense
	// set is unchanged, so subscribers get a fresh snapshot too.
	if expenses, err := s.store.ListExpenses(ctx, b.UserID); err == nil {
		s.hub.Publish(b.UserID, expenses)
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewBudgetUpdated(b.UserID)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget event", log.NewFields().
				WithComponent(log.ComponentEvents).
				WithOperation(log.OpPublish).
				WithUser(b.UserID).
				WithError(err).
				ToSlice()...)
		}
	}

	return b, nil
}

// Get returns the user's budget; ok is false when none is set, which
// callers treat as a zero limit.
func (s *BudgetService) Get(ctx context.Context, sess identity.Session) (core.Budget, bool, error) {
	return s.store.GetBudget(ctx, sess.UserID())
}

// CurrentMonthSpending sums the user's expenses dated on or after the
// start of now's month in now's location.
func (s *BudgetService) CurrentMonthSpending(ctx context.Context, sess identity.Session, now time.Time) (core.Money, error) {
	expenses, err := s.store.ListExpensesSince(ctx, sess.UserID(), core.MonthStart(now))
	if err != nil {
		return core.Money{}, fmt.Errorf("month expenses: %w", err)
	}
	return core.Aggregate(expenses).Total, nil
}

// Overview combines the configured limit with the current month's
// spending. The two reads are not atomic with respect to concurrent
// writes; for a single-writer personal ledger the skew is acceptable.
func (s *BudgetService) Overview(ctx context.Context, sess identity.Session, now time.Time) (BudgetOverview, error) {
	budget, ok, err := s.Get(ctx, sess)
	if err != nil {
		return BudgetOverview{}, err
	}
	spent, err := s.CurrentMonthSpending(ctx, sess, now)
	if err != nil {
		return BudgetOverview{}, err
	}

	status := core.BudgetStatus(budget.Amount, spent)
	return BudgetOverview{
		HasBudget:   ok,
		Limit:       budget.Amount,
		Spent:       spent,
		Remaining:   status.Remaining,
		Utilization: status.Utilization,
	}, nil
}
