// Package supabase implements the store ports against the hosted
// backend's REST interface. Rows are schema-less on the wire and are
// decoded into typed records at this boundary; rows missing required
// fields fail with a ValidationError instead of propagating silently.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"spendwise/internal/core"
)

const (
	expensesTable = "expenses"
	budgetsTable  = "budgets"
	profilesTable = "users"
)

type Store struct {
	client *supa.Client
}

// New builds a store over an authenticated supabase client. The client
// carries the caller's access token so row-level security enforces the
// per-user visibility invariant on the server as well.
func New(client *supa.Client) *Store {
	return &Store{client: client}
}

// NewFromCredentials dials the project directly with an API key.
func NewFromCredentials(projectURL, apiKey string) (*Store, error) {
	client, err := supa.NewClient(projectURL, apiKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// expenseRow is the wire shape of an expense document.
type expenseRow struct {
	ID          string  `json:"id,omitempty"`
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	DateMS      int64   `json:"date"`
}

type budgetRow struct {
	ID     string  `json:"id,omitempty"`
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
}

type profileRow struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (r expenseRow) toDomain() (core.Expense, error) {
	e := core.Expense{
		ID:          r.ID,
		UserID:      r.UserID,
		Category:    r.Category,
		Description: r.Description,
		Date:        time.UnixMilli(r.DateMS),
	}
	cents, err := core.CentsFromFloat(r.Amount)
	if err != nil {
		return core.Expense{}, core.NewValidationError("amount", err)
	}
	e.Amount = core.Money{Cents: cents}
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.NewValidationError("expense row", err)
	}
	return e, nil
}

func (s *Store) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", core.NewValidationError("expense", err)
	}
	row := expenseRow{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount.Dollars(),
		Category:    e.Category,
		Description: e.Description,
		DateMS:      e.Date.UnixMilli(),
	}
	data, _, err := s.client.From(expensesTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return "", &core.StoreError{Op: "append expense", Err: err}
	}

	var created []expenseRow
	if err := json.Unmarshal(data, &created); err != nil {
		return "", &core.StoreError{Op: "decode created expense", Err: err}
	}
	if len(created) == 0 {
		return "", &core.StoreError{Op: "append expense", Err: fmt.Errorf("empty insert response")}
	}
	return created[0].ID, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	query := s.client.From(expensesTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("date.desc", nil)
	data, _, err := query.Execute()
	if err != nil {
		return nil, &core.StoreError{Op: "list expenses", Err: err}
	}
	return decodeExpenses(data)
}

func (s *Store) ListExpensesSince(ctx context.Context, userID string, since time.Time) ([]core.Expense, error) {
	query := s.client.From(expensesTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Gte("date", fmt.Sprintf("%d", since.UnixMilli())).
		Order("date.desc", nil)
	data, _, err := query.Execute()
	if err != nil {
		return nil, &core.StoreError{Op: "list expenses since", Err: err}
	}
	return decodeExpenses(data)
}

func decodeExpenses(data []byte) ([]core.Expense, error) {
	var rows []expenseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &core.StoreError{Op: "decode expenses", Err: err}
	}
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		e, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// UpsertBudget overwrites the user's single budget row; the row id is
// the user id so repeated writes target the same document.
func (s *Store) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return core.NewValidationError("budget", err)
	}
	row := budgetRow{
		ID:     b.UserID,
		UserID: b.UserID,
		Amount: b.Amount.Dollars(),
		Period: string(b.Period),
	}
	_, _, err := s.client.From(budgetsTable).Insert(row, true, "id", "", "").Execute()
	if err != nil {
		return &core.StoreError{Op: "upsert budget", Err: err}
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID string) (core.Budget, bool, error) {
	data, _, err := s.client.From(budgetsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Budget{}, false, &core.StoreError{Op: "get budget", Err: err}
	}

	var rows []budgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Budget{}, false, &core.StoreError{Op: "decode budget", Err: err}
	}
	if len(rows) == 0 {
		return core.Budget{}, false, nil
	}
	r := rows[0]
	cents, err := core.CentsFromFloat(r.Amount)
	if err != nil {
		return core.Budget{}, false, core.NewValidationError("amount", err)
	}
	b := core.Budget{
		ID:     r.ID,
		UserID: r.UserID,
		Amount: core.Money{Cents: cents},
		Period: core.Period(r.Period),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, false, core.NewValidationError("budget row", err)
	}
	return b, true, nil
}

func (s *Store) PutProfile(ctx context.Context, p core.UserProfile) error {
	row := profileRow{UID: p.UID, Email: p.Email, DisplayName: p.DisplayName}
	_, _, err := s.client.From(profilesTable).Insert(row, true, "uid", "", "").Execute()
	if err != nil {
		return &core.StoreError{Op: "put profile", Err: err}
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (core.UserProfile, bool, error) {
	data, _, err := s.client.From(profilesTable).
		Select("*", "", false).
		Eq("uid", uid).
		Execute()
	if err != nil {
		return core.UserProfile{}, false, &core.StoreError{Op: "get profile", Err: err}
	}

	var rows []profileRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.UserProfile{}, false, &core.StoreError{Op: "decode profile", Err: err}
	}
	if len(rows) == 0 {
		return core.UserProfile{}, false, nil
	}
	r := rows[0]
	return core.UserProfile{UID: r.UID, Email: r.Email, DisplayName: r.DisplayName}, true, nil
}
