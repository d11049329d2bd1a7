package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendwise/internal/core"
)

// StoreTestSuite runs the store contract against an in-memory database.
type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	store, err := New(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreTestSuite) expense(userID string, cents int64, category string, date time.Time) core.Expense {
	return core.Expense{
		UserID:   userID,
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     date,
	}
}

func (s *StoreTestSuite) TestAppendAndList() {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	id, err := s.store.AppendExpense(s.ctx, s.expense("u1", 4250, "Food", day))
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), id)

	got, err := s.store.ListExpenses(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), int64(4250), got[0].Amount.Cents)
	assert.Equal(s.T(), "Food", got[0].Category)
	assert.Equal(s.T(), day.UnixMilli(), got[0].Date.UnixMilli())
}

func (s *StoreTestSuite) TestListFiltersOwner() {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err := s.store.AppendExpense(s.ctx, s.expense("u1", 100, "Food", day))
	require.NoError(s.T(), err)
	_, err = s.store.AppendExpense(s.ctx, s.expense("u2", 200, "Bills", day))
	require.NoError(s.T(), err)

	got, err := s.store.ListExpenses(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "u1", got[0].UserID)
}

func (s *StoreTestSuite) TestListNewestFirst() {
	for _, d := range []int{1, 20, 10} {
		_, err := s.store.AppendExpense(s.ctx,
			s.expense("u1", 100, "Food", time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)))
		require.NoError(s.T(), err)
	}
	got, err := s.store.ListExpenses(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 3)
	assert.True(s.T(), got[0].Date.After(got[1].Date))
	assert.True(s.T(), got[1].Date.After(got[2].Date))
}

func (s *StoreTestSuite) TestListSinceBoundary() {
	boundary := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.store.AppendExpense(s.ctx,
		s.expense("u1", 100, "Food", time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)))
	require.NoError(s.T(), err)
	_, err = s.store.AppendExpense(s.ctx, s.expense("u1", 200, "Food", boundary))
	require.NoError(s.T(), err)

	got, err := s.store.ListExpensesSince(s.ctx, "u1", boundary)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), int64(200), got[0].Amount.Cents)
}

func (s *StoreTestSuite) TestAppendRejectsInvalid() {
	_, err := s.store.AppendExpense(s.ctx,
		s.expense("u1", -1, "Food", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.Error(s.T(), err)
	assert.True(s.T(), core.IsValidationError(err))
}

func (s *StoreTestSuite) TestBudgetUpsertOverwrites() {
	require.NoError(s.T(), s.store.UpsertBudget(s.ctx,
		core.Budget{UserID: "u1", Amount: core.Money{Cents: 20000}, Period: core.Monthly}))
	require.NoError(s.T(), s.store.UpsertBudget(s.ctx,
		core.Budget{UserID: "u1", Amount: core.Money{Cents: 30000}, Period: core.Monthly}))

	b, ok, err := s.store.GetBudget(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), int64(30000), b.Amount.Cents)
	assert.Equal(s.T(), core.Monthly, b.Period)
}

func (s *StoreTestSuite) TestBudgetAbsent() {
	_, ok, err := s.store.GetBudget(s.ctx, "nobody")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *StoreTestSuite) TestProfileRoundTrip() {
	p := core.UserProfile{UID: "u1", Email: "ada@example.com", DisplayName: "Ada"}
	require.NoError(s.T(), s.store.PutProfile(s.ctx, p))

	got, ok, err := s.store.GetProfile(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), p, got)

	// Put again with a new display name overwrites.
	p.DisplayName = "Ada L."
	require.NoError(s.T(), s.store.PutProfile(s.ctx, p))
	got, _, _ = s.store.GetProfile(s.ctx, "u1")
	assert.Equal(s.T(), "Ada L.", got.DisplayName)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
