package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/money"
)

type addState int

const (
	addStateLoading addState = iota
	addStateForm
	addStateSaved
)

type AddExpenseModel struct {
	CommonModel
	expenses   *expense.Service
	categories *category.Service
	money      *money.Formatter
	userID     string

	state  addState
	cats   []*category.Category
	fields *expenseFields
	form   *huh.Form
	saved  *expense.Expense
	err    error
}

func NewAddExpenseModel(expenses *expense.Service, categories *category.Service, formatter *money.Formatter, userID string) AddExpenseModel {
	return AddExpenseModel{
		expenses:   expenses,
		categories: categories,
		money:      formatter,
		userID:     userID,
		state:      addStateLoading,
	}
}

func (m AddExpenseModel) Title() string { return "Add Expense" }

func (m AddExpenseModel) ShortHelp() string {
	if m.state == addStateSaved {
		return "Esc: back | n: add another"
	}

	return "Esc: back | Enter/Tab: navigate form"
}

func (m AddExpenseModel) Init() tea.Cmd {
	return loadActiveCategoriesCmd(m.categories, m.userID)
}

func (m AddExpenseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		}

		m.cats = msg.categories

		return m.newForm()

	case addSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m.newFormKeeping(m.fields)
		}

		m.err = nil
		m.saved = msg.expense
		m.state = addStateSaved

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == addStateSaved && msg.String() == "n" {
			return m.newForm()
		}
	}

	if m.state != addStateForm || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m AddExpenseModel) newForm() (tea.Model, tea.Cmd) {
	return m.newFormKeeping(newExpenseFields())
}

func (m AddExpenseModel) newFormKeeping(fields *expenseFields) (tea.Model, tea.Cmd) {
	m.fields = fields
	m.form = fields.form(m.cats)
	m.state = addStateForm

	return m, m.form.Init()
}

func (m AddExpenseModel) View() string {
	var content string

	switch m.state {
	case addStateLoading:
		content = "Loading categories..."
	case addStateForm:
		content = m.form.View()
	case addStateSaved:
		content = lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Expense saved."),
			"",
			fmt.Sprintf("%s  %s  %s  %s",
				FormatDate(m.saved.OccurredOn),
				m.money.Format(m.saved.Amount),
				m.saved.CategoryLabel(),
				m.saved.Description,
			),
		)
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type addSavedMsg struct {
	expense *expense.Expense
	err     error
}

func (m AddExpenseModel) saveCmd() tea.Cmd {
	fields := m.fields

	return func() tea.Msg {
		params, err := fields.createParams()
		if err != nil {
			return addSavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.expenses.Create(ctx, m.userID, params)

		return addSavedMsg{expense: e, err: err}
	}
}
