// Package memory implements the store ports in process memory. It is
// the development and test backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
)

type Store struct {
	mu       sync.Mutex
	expenses []core.Expense
	budgets  map[string]core.Budget
	profiles map[string]core.UserProfile
}

func New() *Store {
	return &Store{
		budgets:  make(map[string]core.Budget),
		profiles: make(map[string]core.UserProfile),
	}
}

// AppendExpense stores the expense and returns its generated id.
func (s *Store) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", core.NewValidationError("expense", err)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

// ListExpenses returns the user's expenses, newest first.
func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userID, time.Time{}), nil
}

// ListExpensesSince returns the user's expenses dated on or after since,
// newest first.
func (s *Store) ListExpensesSince(_ context.Context, userID string, since time.Time) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userID, since), nil
}

func (s *Store) listLocked(userID string, since time.Time) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if !since.IsZero() && e.Date.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// UpsertBudget overwrites the user's single budget record.
func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return core.NewValidationError("budget", err)
	}
	b.ID = b.UserID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.UserID] = b
	return nil
}

func (s *Store) GetBudget(_ context.Context, userID string) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	return b, ok, nil
}

func (s *Store) PutProfile(_ context.Context, p core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UID] = p
	return nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (core.UserProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	return p, ok, nil
}
