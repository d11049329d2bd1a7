package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

type (
	Period string

	Money struct {
		Cents int64
	}

	// Expense is immutable once recorded: there are no edit or delete
	// flows, only append and read.
	Expense struct {
		ID          string
		UserID      string
		Amount      Money
		Category    string
		Description string // optional
		Date        time.Time
	}

	// Budget is keyed by its owner: ID always equals UserID, so each
	// user has at most one live budget and writes are upserts.
	Budget struct {
		ID     string
		UserID string
		Amount Money
		Period Period
	}

	UserProfile struct {
		UID         string
		Email       string
		DisplayName string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyUserID   = errors.New("empty user id")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyEmail    = errors.New("empty email")
	ErrEmptyPassword = errors.New("empty password")

	ErrEmptyDisplayName = errors.New("empty display name")
)

// SuggestedCategories is the fixed suggestion set offered when recording
// an expense. Free-form category names are still accepted.
var SuggestedCategories = []string{
	"Food", "Transport", "Entertainment", "Bills", "Shopping", "Health", "Other",
}

func (p Period) Validate() error {
	switch p {
	case Weekly, Monthly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.Period.Validate()
}
