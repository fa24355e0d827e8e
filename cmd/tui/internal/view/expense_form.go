package view

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
)

// expenseFields backs the add and amend forms. It is held by pointer so huh can bind to it
// while the owning model is copied around by Bubble Tea.
type expenseFields struct {
	amount      string
	description string
	date        string
	category    string
}

func newExpenseFields() *expenseFields {
	return &expenseFields{date: FormatDate(time.Now())}
}

func fieldsFrom(e *expense.Expense) *expenseFields {
	return &expenseFields{
		amount:      e.Amount.StringFixed(2),
		description: e.Description,
		date:        FormatDate(e.OccurredOn),
		category:    e.Category,
	}
}

func (f *expenseFields) createParams() (expense.CreateParams, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return expense.CreateParams{}, err
	}

	day, err := parseDay(f.date)
	if err != nil {
		return expense.CreateParams{}, err
	}

	return expense.CreateParams{
		Amount:      amount,
		Description: strings.TrimSpace(f.description),
		OccurredOn:  day,
		Category:    f.category,
	}, nil
}

// amendParams sets only the fields that differ from e.
func (f *expenseFields) amendParams(e *expense.Expense) (expense.AmendParams, error) {
	var params expense.AmendParams

	amount, err := parseAmount(f.amount)
	if err != nil {
		return params, err
	}

	day, err := parseDay(f.date)
	if err != nil {
		return params, err
	}

	if !amount.Equal(e.Amount) {
		params.Amount = &amount
	}

	if desc := strings.TrimSpace(f.description); desc != e.Description {
		params.Description = &desc
	}

	if FormatDate(day) != FormatDate(e.OccurredOn) {
		params.OccurredOn = &day
	}

	if f.category != e.Category {
		params.Category = &f.category
	}

	return params, nil
}

func (f *expenseFields) form(categories []*category.Category) *huh.Form {
	options := []huh.Option[string]{huh.NewOption(expense.Uncategorized, "")}
	known := false

	for _, c := range categories {
		options = append(options, huh.NewOption(c.Label, c.Label))
		known = known || c.Label == f.category
	}

	// An amended expense may point at an archived category.
	if f.category != "" && !known {
		options = append(options, huh.NewOption(f.category+" (archived)", f.category))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&f.amount).
				Validate(validateAmount),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&f.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.date).
				Validate(validateDay),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&f.category),
		),
	).WithWidth(45).WithShowHelp(false)
}

type categoriesLoadedMsg struct {
	categories []*category.Category
	err        error
}

func loadActiveCategoriesCmd(svc *category.Service, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := svc.List(ctx, userID)

		return categoriesLoadedMsg{categories: cats, err: err}
	}
}
