// Package sqlite implements the store ports on a local SQLite database
// for single-box deployments that do not use the hosted backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and ensures the
// schema exists. Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date_ms)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			user_id TEXT PRIMARY KEY,
			amount_cents INTEGER NOT NULL,
			period TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", core.NewValidationError("expense", err)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, category, description, date_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.UnixMilli())
	if err != nil {
		return "", &core.StoreError{Op: "append expense", Err: err}
	}
	return e.ID, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.list(ctx,
		`SELECT id, user_id, amount_cents, category, description, date_ms
		 FROM expenses WHERE user_id = ? ORDER BY date_ms DESC`, userID)
}

func (s *Store) ListExpensesSince(ctx context.Context, userID string, since time.Time) ([]core.Expense, error) {
	return s.list(ctx,
		`SELECT id, user_id, amount_cents, category, description, date_ms
		 FROM expenses WHERE user_id = ? AND date_ms >= ? ORDER BY date_ms DESC`,
		userID, since.UnixMilli())
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.StoreError{Op: "list expenses", Err: err}
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		var (
			e      core.Expense
			dateMS int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &dateMS); err != nil {
			return nil, &core.StoreError{Op: "scan expense", Err: err}
		}
		e.Date = time.UnixMilli(dateMS)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list expenses", Err: err}
	}
	return out, nil
}

func (s *Store) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return core.NewValidationError("budget", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, amount_cents, period) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount_cents = excluded.amount_cents, period = excluded.period`,
		b.UserID, b.Amount.Cents, string(b.Period))
	if err != nil {
		return &core.StoreError{Op: "upsert budget", Err: err}
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID string) (core.Budget, bool, error) {
	b := core.Budget{ID: userID, UserID: userID}
	var period string
	err := s.db.QueryRowContext(ctx,
		`SELECT amount_cents, period FROM budgets WHERE user_id = ?`, userID).
		Scan(&b.Amount.Cents, &period)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, &core.StoreError{Op: "get budget", Err: err}
	}
	b.Period = core.Period(period)
	return b, true, nil
}

func (s *Store) PutProfile(ctx context.Context, p core.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (uid, email, display_name) VALUES (?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET email = excluded.email, display_name = excluded.display_name`,
		p.UID, p.Email, p.DisplayName)
	if err != nil {
		return &core.StoreError{Op: "put profile", Err: err}
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (core.UserProfile, bool, error) {
	var p core.UserProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, email, display_name FROM profiles WHERE uid = ?`, uid).
		Scan(&p.UID, &p.Email, &p.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserProfile{}, false, nil
	}
	if err != nil {
		return core.UserProfile{}, false, &core.StoreError{Op: "get profile", Err: err}
	}
	return p, true, nil
}
