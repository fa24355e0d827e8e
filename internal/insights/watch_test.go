package insights_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/insights"
)

type expenseFeed struct {
	updates chan []*expense.Expense
	err     error
}

func (f expenseFeed) Subscribe(context.Context, string, expense.ListFilter) (<-chan []*expense.Expense, error) {
	return f.updates, f.err
}

type categoryFeed struct {
	updates chan []*category.Category
	all     []*category.Category
}

func (f categoryFeed) Subscribe(context.Context, string) (<-chan []*category.Category, error) {
	return f.updates, nil
}

func (f categoryFeed) ListAll(context.Context, string) ([]*category.Category, error) {
	return f.all, nil
}

func next(t *testing.T, dashboards <-chan insights.Dashboard) insights.Dashboard {
	t.Helper()

	select {
	case d, ok := <-dashboards:
		require.True(t, ok, "dashboards closed")
		return d
	case <-time.After(time.Second):
		t.Fatal("no dashboard")
	}

	return insights.Dashboard{}
}

func TestWatch_RebuildsOnEverySnapshot(t *testing.T) {
	expenses := expenseFeed{updates: make(chan []*expense.Expense, 1)}
	categories := categoryFeed{updates: make(chan []*category.Category, 1), all: category.Defaults()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dashboards, err := insights.Watch(ctx, expenses, categories, "u1", insights.PresetRange(insights.Preset7D), func() time.Time { return now })
	require.NoError(t, err)

	expenses.updates <- []*expense.Expense{rec(5, "Bills", daysAgo(2))}
	categories.updates <- nil

	first := next(t, dashboards)
	assert.True(t, first.Periods.Today.IsZero())
	require.Len(t, first.Categories, 1)
	assert.Equal(t, "bg-emerald-600", first.Categories[0].Color)

	expenses.updates <- []*expense.Expense{rec(5, "Bills", daysAgo(2)), rec(12, "", now)}

	second := next(t, dashboards)
	assert.True(t, decimal.NewFromInt(12).Equal(second.Periods.Today))
	assert.True(t, decimal.NewFromInt(17).Equal(second.Stats.Total))

	cancel()

	select {
	case _, ok := <-dashboards:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dashboards not closed")
	}
}

func TestWatch_SubscribeFails(t *testing.T) {
	failure := errors.New("store down")

	_, err := insights.Watch(context.Background(), expenseFeed{err: failure}, categoryFeed{}, "u1", insights.PresetRange(insights.Preset1M), time.Now)
	assert.ErrorIs(t, err, failure)
}
