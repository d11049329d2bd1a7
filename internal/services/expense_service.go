// Package services orchestrates the domain operations over the store,
// the live-subscription hub, and the optional event bus.
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

// EventPublisher is the slice of the bus a service needs for announcing
// writes. A nil publisher degrades to local-only notification.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.ChangeEvent) error
}

// ExpenseService records and reads a user's expenses.
type ExpenseService struct {
	store store.Store
	hub   *stream.Hub
	bus   EventPublisher
}

func NewExpenseService(st store.Store, hub *stream.Hub, bus EventPublisher) *ExpenseService {
	return &ExpenseService{store: st, hub: hub, bus: bus}
}

// Create records an expense for the session's user. The owner is always
// the authenticated user; a caller cannot write into another user's
// ledger. After the write, the user's live subscriptions receive a
// fresh snapshot.
func (s *ExpenseService) Create(ctx context.Context, sess identity.Session, e core.Expense) (core.Expense, error) {
	e.UserID = sess.UserID()
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.NewValidationError("expense", err)
	}

	id, err := s.store.AppendExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense created", log.NewFields().
		WithComponent(log.ComponentExpense).
		WithOperation(log.OpCreate).
		WithUser(e.UserID).
		WithExpense(e.ID, e.Amount.Cents, e.Category).
		ToSlice()...)

	if _, err := s.Refresh(ctx, e.UserID); err != nil {
		// The write succeeded; subscribers catch up on the next change.
		slog.ErrorContext(ctx, "Failed to refresh subscriptions", log.NewFields().
			WithComponent(log.ComponentStream).
			WithUser(e.UserID).
			WithError(err).
			ToSlice()...)
	}
	s.announce(ctx, events.NewExpenseCreated(e.UserID, e.ID))

	return e, nil
}

// List returns the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, sess identity.Session) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, sess.UserID())
}

// Refresh reloads the user's expense set and pushes it to the user's
// live subscriptions. It is invoked after local writes and for change
// events from other instances.
func (s *ExpenseService) Refresh(ctx context.Context, userID string) (uint64, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reload expenses: %w", err)
	}
	return s.hub.Publish(userID, expenses), nil
}

// HandleChangeEvent feeds a bus event back into the local hub so this
// instance's subscribers converge with writes made elsewhere.
func (s *ExpenseService) HandleChangeEvent(ctx context.Context, event *events.ChangeEvent) error {
	_, err := s.Refresh(ctx, event.UserID)
	return err
}

func (s *ExpenseService) announce(ctx context.Context, event *events.ChangeEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		// Not fatal: the local hub already notified this instance.
		fields := log.NewFields().
			WithComponent(log.ComponentEvents).
			WithOperation(log.OpPublish).
			WithUser(event.UserID).
			WithError(err)
		slog.ErrorContext(ctx, "Failed to publish change event",
			append(fields.ToSlice(), "kind", event.Kind)...)
	}
}
