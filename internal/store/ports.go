// Package store defines the outbound ports for the document store the
// application delegates persistence to. Every read takes the owning
// user id: cross-user visibility is never permitted, so there is no
// operation that returns another user's records.
package store

import (
	"context"
	"time"

	"spendwise/internal/core"
)

type (
	// ExpenseStore appends and reads a user's expense records.
	ExpenseStore interface {
		// AppendExpense persists the expense and returns its id.
		AppendExpense(ctx context.Context, e core.Expense) (string, error)

		// ListExpenses returns all of the user's expenses, newest first.
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)

		// ListExpensesSince returns the user's expenses dated on or
		// after since, newest first.
		ListExpensesSince(ctx context.Context, userID string, since time.Time) ([]core.Expense, error)
	}

	// BudgetStore holds at most one budget per user; writes overwrite.
	BudgetStore interface {
		UpsertBudget(ctx context.Context, b core.Budget) error

		// GetBudget reports ok=false when the user has no budget set.
		GetBudget(ctx context.Context, userID string) (core.Budget, bool, error)
	}

	// ProfileStore holds the user document written at signup.
	ProfileStore interface {
		PutProfile(ctx context.Context, p core.UserProfile) error
		GetProfile(ctx context.Context, uid string) (core.UserProfile, bool, error)
	}

	// Store is the unified persistence surface a backend provides.
	Store interface {
		ExpenseStore
		BudgetStore
		ProfileStore
	}
)
