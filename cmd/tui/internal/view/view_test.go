package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/insights"
)

func TestExpenseFields_AmendParams(t *testing.T) {
	original := &expense.Expense{
		Amount:      decimal.RequireFromString("12.50"),
		Description: "Lunch",
		OccurredOn:  time.Date(2024, time.October, 14, 0, 0, 0, 0, time.Local),
		Category:    "Food & Drink",
	}

	type testCase struct {
		name   string
		edit   func(f *expenseFields)
		check  func(t *testing.T, p expense.AmendParams)
		errMsg string
	}

	tests := []testCase{
		{
			name: "Unchanged",
			edit: func(*expenseFields) {},
			check: func(t *testing.T, p expense.AmendParams) {
				assert.Equal(t, expense.AmendParams{}, p)
			},
		},
		{
			name: "AmountAndCategory",
			edit: func(f *expenseFields) {
				f.amount = "15"
				f.category = ""
			},
			check: func(t *testing.T, p expense.AmendParams) {
				require.NotNil(t, p.Amount)
				assert.True(t, decimal.NewFromInt(15).Equal(*p.Amount))
				require.NotNil(t, p.Category)
				assert.Empty(t, *p.Category)
				assert.Nil(t, p.Description)
				assert.Nil(t, p.OccurredOn)
			},
		},
		{
			name: "DescriptionTrimmed",
			edit: func(f *expenseFields) { f.description = "  Lunch  " },
			check: func(t *testing.T, p expense.AmendParams) {
				assert.Nil(t, p.Description)
			},
		},
		{
			name: "NewDate",
			edit: func(f *expenseFields) { f.date = "2024-10-13" },
			check: func(t *testing.T, p expense.AmendParams) {
				require.NotNil(t, p.OccurredOn)
				assert.Equal(t, 13, p.OccurredOn.Day())
			},
		},
		{
			name:   "BadAmount",
			edit:   func(f *expenseFields) { f.amount = "-3" },
			errMsg: "must be greater than zero",
		},
		{
			name:   "BadDate",
			edit:   func(f *expenseFields) { f.date = "14/10/2024" },
			errMsg: "use YYYY-MM-DD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fieldsFrom(original)
			tt.edit(f)

			params, err := f.amendParams(original)

			if tt.errMsg != "" {
				assert.EqualError(t, err, tt.errMsg)
				return
			}

			require.NoError(t, err)
			tt.check(t, params)
		})
	}
}

func TestExpenseFields_CreateParams(t *testing.T) {
	f := newExpenseFields()
	f.amount = "99.9"
	f.description = " Taxi "
	f.date = "2024-10-16"
	f.category = "Transport"

	params, err := f.createParams()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("99.9").Equal(params.Amount))
	assert.Equal(t, "Taxi", params.Description)
	assert.Equal(t, time.Date(2024, time.October, 16, 0, 0, 0, 0, time.Local), params.OccurredOn)
	assert.Equal(t, "Transport", params.Category)
}

func press(p RangePicker, keys ...tea.KeyMsg) (RangePicker, tea.Msg) {
	var cmd tea.Cmd
	for _, k := range keys {
		p, cmd = p.Update(k)
	}

	if cmd == nil {
		return p, nil
	}

	return p, cmd()
}

func TestRangePicker(t *testing.T) {
	var (
		up    = tea.KeyMsg{Type: tea.KeyUp}
		down  = tea.KeyMsg{Type: tea.KeyDown}
		enter = tea.KeyMsg{Type: tea.KeyEnter}
	)

	t.Run("StartsOnInitialPreset", func(t *testing.T) {
		_, msg := press(NewRangePicker(insights.Preset1M, false), enter)
		assert.Equal(t, RangeSelectedMsg{Range: insights.PresetRange(insights.Preset1M)}, msg)
	})

	t.Run("MovesBetweenPresets", func(t *testing.T) {
		_, msg := press(NewRangePicker(insights.Preset1M, false), up, up, enter)
		assert.Equal(t, RangeSelectedMsg{Range: insights.PresetRange(insights.Preset7D)}, msg)
	})

	t.Run("AllTime", func(t *testing.T) {
		_, msg := press(NewRangePicker(insights.Preset1Y, true), down, enter)
		assert.Equal(t, RangeSelectedMsg{All: true}, msg)
	})

	t.Run("Custom", func(t *testing.T) {
		p, _ := press(NewRangePicker(insights.Preset1Y, false), down, enter)
		require.False(t, p.IsSelecting())

		p.startInput.SetValue("2024-10-01")
		p.endInput.SetValue("2024-10-20")

		_, msg := press(p, enter)
		selected, ok := msg.(RangeSelectedMsg)
		require.True(t, ok)
		assert.True(t, selected.Range.IsCustom())
		assert.Equal(t, 20, selected.Range.End.Day())
	})

	t.Run("CustomRejectsLongSpan", func(t *testing.T) {
		p, _ := press(NewRangePicker(insights.Preset1Y, false), down, enter)
		p.startInput.SetValue("2000-01-01")
		p.endInput.SetValue("2024-10-20")

		p, msg := press(p, enter)
		assert.Nil(t, msg)
		assert.ErrorIs(t, p.err, insights.ErrRangeTooLong)
	})

	t.Run("CustomRejectsBadDate", func(t *testing.T) {
		p, _ := press(NewRangePicker(insights.Preset1Y, false), down, enter)
		p.startInput.SetValue("yesterday")

		p, msg := press(p, enter)
		assert.Nil(t, msg)
		assert.Error(t, p.err)
	})
}

type expenseFeed chan []*expense.Expense

func (f expenseFeed) Subscribe(context.Context, string, expense.ListFilter) (<-chan []*expense.Expense, error) {
	return f, nil
}

type categoryFeed chan []*category.Category

func (f categoryFeed) Subscribe(context.Context, string) (<-chan []*category.Category, error) {
	return f, nil
}

func (f categoryFeed) ListAll(context.Context, string) ([]*category.Category, error) {
	return category.Defaults(), nil
}

func update(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	dm, ok := next.(DashboardModel)
	require.True(t, ok)

	return dm, cmd
}

func TestDashboardModel_FollowsSnapshots(t *testing.T) {
	today := time.Date(2024, time.October, 16, 15, 0, 0, 0, time.Local)

	expenses := make(expenseFeed, 1)
	categories := make(categoryFeed, 1)

	m := NewDashboardModel(expenses, categories, nil, "u1")
	m.now = func() time.Time { return today }
	m.rng = insights.PresetRange(insights.Preset7D)
	m.state = dashboardStateLoading

	m, wait := update(t, m, m.subscribeCmd()())
	require.NotNil(t, wait)
	defer m.Close()

	expenses <- []*expense.Expense{{Amount: decimal.NewFromInt(8), OccurredOn: today.AddDate(0, 0, -1)}}
	categories <- nil

	m, wait = update(t, m, wait())
	assert.Equal(t, dashboardStateReady, m.state)
	assert.True(t, m.data.Periods.Today.IsZero())

	expenses <- []*expense.Expense{
		{Amount: decimal.NewFromInt(8), OccurredOn: today.AddDate(0, 0, -1)},
		{Amount: decimal.NewFromInt(3), OccurredOn: today},
	}

	m, _ = update(t, m, wait())
	assert.True(t, decimal.NewFromInt(3).Equal(m.data.Periods.Today))
	assert.True(t, decimal.NewFromInt(11).Equal(m.data.Stats.Total))
}

func TestDashboardModel_DropsStaleSnapshots(t *testing.T) {
	m := NewDashboardModel(nil, nil, nil, "u1")
	m.generation = 2
	m.state = dashboardStateLoading

	m, cmd := update(t, m, dashboardSnapshotMsg{generation: 1})
	assert.Nil(t, cmd)
	assert.Equal(t, dashboardStateLoading, m.state)
}
