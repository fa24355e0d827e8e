package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/database/dbtest"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/expense/store"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

var _ retention.Repository = (*store.Store)(nil)

func seed(t *testing.T, s *store.Store, userID, desc, category string, amount int64, occurred time.Time) *expense.Expense {
	t.Helper()

	e := &expense.Expense{
		UserID:      userID,
		Amount:      decimal.NewFromInt(amount),
		Description: desc,
		OccurredOn:  occurred,
		Category:    category,
	}
	require.NoError(t, s.CreateExpense(context.Background(), e))

	return e
}

func TestStore(t *testing.T) {
	db, _ := dbtest.New(t)
	s := store.New(db)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, time.October, d, 12, 0, 0, 0, time.UTC) }

	lunch := seed(t, s, "u1", "Lunch", "Food & Drink", 15, day(3))
	taxi := seed(t, s, "u1", "Taxi", "Transport", 30, day(5))
	misc := seed(t, s, "u1", "Stamps", "", 2, day(7))
	seed(t, s, "u2", "Other user", "Food & Drink", 99, day(5))

	t.Run("Get", func(t *testing.T) {
		got, err := s.GetExpense(ctx, "u1", lunch.ID)
		require.NoError(t, err)

		assert.Equal(t, "Lunch", got.Description)
		assert.True(t, decimal.NewFromInt(15).Equal(got.Amount))
		assert.Equal(t, "Food & Drink", got.Category)
		assert.Zero(t, got.AmendCount)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("GetOtherUser", func(t *testing.T) {
		_, err := s.GetExpense(ctx, "u2", lunch.ID)
		assert.ErrorIs(t, err, expense.ErrNotFound)
	})

	t.Run("ListDefaultsToNewestFirst", func(t *testing.T) {
		got, err := s.ListExpenses(ctx, "u1", expense.ListFilter{})
		require.NoError(t, err)

		require.Len(t, got, 3)
		assert.Equal(t, []uuid.UUID{misc.ID, taxi.ID, lunch.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("ListFilters", func(t *testing.T) {
		food := "Food & Drink"
		none := expense.Uncategorized
		start, end := day(4), day(7)

		byCategory, err := s.ListExpenses(ctx, "u1", expense.ListFilter{Category: &food})
		require.NoError(t, err)
		require.Len(t, byCategory, 1)
		assert.Equal(t, lunch.ID, byCategory[0].ID)

		uncategorized, err := s.ListExpenses(ctx, "u1", expense.ListFilter{Category: &none})
		require.NoError(t, err)
		require.Len(t, uncategorized, 1)
		assert.Equal(t, misc.ID, uncategorized[0].ID)

		inRange, err := s.ListExpenses(ctx, "u1", expense.ListFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Len(t, inRange, 2)

		byAmount, err := s.ListExpenses(ctx, "u1", expense.ListFilter{SortBy: expense.SortByAmount, Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, misc.ID, byAmount[0].ID)
	})

	t.Run("AmendIsConditional", func(t *testing.T) {
		next := *taxi
		next.Description = "Airport taxi"
		next.AmendCount = 1
		next.UpdatedAt = new(time.Now().UTC().Truncate(time.Microsecond))

		ok, err := s.AmendExpense(ctx, &next, 0)
		require.NoError(t, err)
		assert.True(t, ok)

		stale := next
		stale.Description = "Stale write"

		ok, err = s.AmendExpense(ctx, &stale, 0)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.GetExpense(ctx, "u1", taxi.ID)
		require.NoError(t, err)
		assert.Equal(t, "Airport taxi", got.Description)
		assert.Equal(t, 1, got.AmendCount)
		require.NotNil(t, got.UpdatedAt)
	})

	t.Run("AmendCountCheckConstraint", func(t *testing.T) {
		over := *lunch
		over.AmendCount = 3
		over.UpdatedAt = new(time.Now())

		_, err := s.AmendExpense(ctx, &over, 0)
		assert.Error(t, err)
	})

	t.Run("DeleteExpensesBefore", func(t *testing.T) {
		n, err := s.DeleteExpensesBefore(ctx, "u1", day(5))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = s.DeleteExpensesBefore(ctx, "u1", day(5))
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = s.GetExpense(ctx, "u1", taxi.ID)
		assert.NoError(t, err, "records at the cutoff are kept")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.DeleteExpense(ctx, "u1", misc.ID))
		assert.ErrorIs(t, s.DeleteExpense(ctx, "u1", misc.ID), expense.ErrNotFound)
	})
}
