package memory

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.AppendExpense(ctx, core.Expense{
		UserID:   "u1",
		Amount:   core.Money{Cents: 4250},
		Category: "Food",
		Date:     date(2025, 6, 10),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == "" {
		t.Fatal("append returned empty id")
	}

	// Another user's expense must never be visible to u1.
	if _, err := s.AppendExpense(ctx, core.Expense{
		UserID:   "u2",
		Amount:   core.Money{Cents: 100},
		Category: "Bills",
		Date:     date(2025, 6, 11),
	}); err != nil {
		t.Fatalf("append u2: %v", err)
	}

	got, err := s.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 expense for u1, got %d", len(got))
	}
	if got[0].UserID != "u1" || got[0].Amount.Cents != 4250 {
		t.Fatalf("unexpected expense: %+v", got[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, d := range []time.Time{date(2025, 6, 1), date(2025, 6, 20), date(2025, 6, 10)} {
		if _, err := s.AppendExpense(ctx, core.Expense{
			UserID: "u1", Amount: core.Money{Cents: 100}, Category: "Food", Date: d,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Fatalf("expenses not newest-first: %v before %v", got[i-1].Date, got[i].Date)
		}
	}
}

func TestListExpensesSinceBoundary(t *testing.T) {
	s := New()
	ctx := context.Background()
	boundary := date(2025, 6, 1)

	for _, e := range []core.Expense{
		{UserID: "u1", Amount: core.Money{Cents: 100}, Category: "Food", Date: date(2025, 5, 31)},
		{UserID: "u1", Amount: core.Money{Cents: 200}, Category: "Food", Date: boundary},
		{UserID: "u1", Amount: core.Money{Cents: 300}, Category: "Food", Date: date(2025, 6, 15)},
	} {
		if _, err := s.AppendExpense(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.ListExpensesSince(ctx, "u1", boundary)
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses on/after boundary, got %d", len(got))
	}
	var total int64
	for _, e := range got {
		total += e.Amount.Cents
	}
	if total != 500 {
		t.Fatalf("total = %d, want 500", total)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.AppendExpense(context.Background(), core.Expense{
		UserID: "u1", Amount: core.Money{Cents: -1}, Category: "Food", Date: date(2025, 6, 1),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !core.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBudgetUpsertOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.UpsertBudget(ctx, core.Budget{UserID: "u1", Amount: core.Money{Cents: 20000}, Period: core.Monthly}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertBudget(ctx, core.Budget{UserID: "u1", Amount: core.Money{Cents: 30000}, Period: core.Monthly}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	b, ok, err := s.GetBudget(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get budget: ok=%v err=%v", ok, err)
	}
	if b.Amount.Cents != 30000 {
		t.Fatalf("amount = %d, want 30000 (latest write wins)", b.Amount.Cents)
	}
	if b.ID != "u1" {
		t.Fatalf("budget id = %q, want owner id", b.ID)
	}
}

func TestGetBudgetAbsent(t *testing.T) {
	s := New()
	_, ok, err := s.GetBudget(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unset budget")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := core.UserProfile{UID: "u1", Email: "a@b.c", DisplayName: "Ada"}
	if err := s.PutProfile(ctx, p); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.GetProfile(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != p {
		t.Fatalf("profile = %+v, want %+v", got, p)
	}
}
