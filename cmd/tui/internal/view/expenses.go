package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/money"
)

type expensesState int

const (
	expensesStateBrowse expensesState = iota
	expensesStateAmend
)

// ExpensesModel shows the user's expenses and keeps them current through a subscription.
type ExpensesModel struct {
	CommonModel
	expenses   *expense.Service
	categories *category.Service
	money      *money.Formatter
	userID     string

	state   expensesState
	table   table.Model
	items   []*expense.Expense
	cats    []*category.Category
	fields  *expenseFields
	form    *huh.Form
	editing *expense.Expense

	// Each subscription gets a generation so snapshots from a cancelled one are dropped.
	generation int
	cancel     context.CancelFunc

	sortByAmount  bool
	pendingDelete uuid.UUID
	loading       bool
	err           error
	status        string
}

func NewExpensesModel(expenses *expense.Service, categories *category.Service, formatter *money.Formatter, userID string) ExpensesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 16},
		{Title: "Description", Width: 36},
		{Title: "Amends left", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ExpensesModel{
		expenses:   expenses,
		categories: categories,
		money:      formatter,
		userID:     userID,
		table:      t,
		loading:    true,
	}
}

func (m ExpensesModel) Title() string { return "Expenses" }

func (m ExpensesModel) ShortHelp() string {
	if m.state == expensesStateAmend {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: amend | d: delete | s: sort"
}

func (m ExpensesModel) Init() tea.Cmd {
	return tea.Batch(m.subscribeCmd(), loadActiveCategoriesCmd(m.categories, m.userID))
}

// Close stops the live subscription.
func (m ExpensesModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expensesSubscribedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err

			return m, nil
		}

		m.Close()
		m.generation = msg.generation
		m.cancel = msg.cancel

		return m, waitForExpenses(msg.generation, msg.updates)

	case expensesSnapshotMsg:
		if msg.generation != m.generation {
			return m, nil
		}

		m.loading = false
		m.err = nil
		m.items = msg.items
		m.refreshTable()

		return m, waitForExpenses(msg.generation, msg.updates)

	case categoriesLoadedMsg:
		m.cats = msg.categories
		return m, nil

	case expenseActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = describeExpenseError(msg.err)
		}

		m.state = expensesStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil
	}

	switch m.state {
	case expensesStateBrowse:
		return m.updateBrowse(msg)
	case expensesStateAmend:
		return m.updateAmend(msg)
	}

	return m, nil
}

func (m ExpensesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		key := keyMsg.String()
		if key != "d" {
			m.pendingDelete = uuid.Nil
		}

		switch key {
		case "esc":
			m.Close()
			return m, Back
		case "e":
			return m.enterAmendMode()
		case "d":
			return m.delete()
		case "s":
			m.sortByAmount = !m.sortByAmount
			m.loading = true

			return m, m.subscribeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ExpensesModel) selected() *expense.Expense {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m ExpensesModel) enterAmendMode() (tea.Model, tea.Cmd) {
	e := m.selected()
	if e == nil {
		return m, nil
	}

	if !expense.CanAmend(e) {
		m.status = fmt.Sprintf("This expense is locked: it has been amended %d times already.", expense.MaxAmends)
		return m, nil
	}

	m.editing = e
	m.fields = fieldsFrom(e)
	m.form = m.fields.form(m.cats)
	m.state = expensesStateAmend
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

// delete asks for confirmation on the first press and deletes on the second.
func (m ExpensesModel) delete() (tea.Model, tea.Cmd) {
	e := m.selected()
	if e == nil {
		return m, nil
	}

	if m.pendingDelete != e.ID {
		m.pendingDelete = e.ID
		m.status = fmt.Sprintf("Press d again to delete %q.", e.Description)

		return m, nil
	}

	m.pendingDelete = uuid.Nil
	id := e.ID

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.expenses.Delete(ctx, m.userID, id); err != nil {
			return expenseActionMsg{err: err}
		}

		return expenseActionMsg{status: "Deleted."}
	}
}

func (m ExpensesModel) updateAmend(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = expensesStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.amendCmd()
}

func (m ExpensesModel) amendCmd() tea.Cmd {
	e := m.editing
	fields := m.fields

	return func() tea.Msg {
		params, err := fields.amendParams(e)
		if err != nil {
			return expenseActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		amended, err := m.expenses.Amend(ctx, m.userID, e.ID, params)
		if err != nil {
			return expenseActionMsg{err: err}
		}

		left := expense.MaxAmends - amended.AmendCount

		return expenseActionMsg{status: fmt.Sprintf("Amended. %d amend(s) left.", left)}
	}
}

func describeExpenseError(err error) string {
	switch {
	case errors.Is(err, expense.ErrEditLimitExceeded):
		return "This expense is locked and can no longer be amended."
	case errors.Is(err, expense.ErrAmendConflict):
		return "Someone else amended this expense. Try again."
	case errors.Is(err, expense.ErrNotFound):
		return "This expense no longer exists."
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m ExpensesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading expenses...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	sortLabel := "Date"
	if m.sortByAmount {
		sortLabel = "Amount"
	}

	total := m.money.Format(sumAmounts(m.items))
	header := fmt.Sprintf("[s] Sort: %s | %d expenses | Total: %s", activeStyle(sortLabel), len(m.items), total)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == expensesStateAmend && m.form != nil && m.editing != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Amend Expense (%d left)\n\n%s",
				expense.MaxAmends-m.editing.AmendCount, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ExpensesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, e := range m.items {
		left := "locked"
		if expense.CanAmend(e) {
			left = fmt.Sprint(expense.MaxAmends - e.AmendCount)
		}

		rows = append(rows, table.Row{
			FormatDate(e.OccurredOn),
			m.money.Format(e.Amount),
			e.CategoryLabel(),
			e.Description,
			left,
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Messages

type expensesSubscribedMsg struct {
	generation int
	updates    <-chan []*expense.Expense
	cancel     context.CancelFunc
	err        error
}

type expensesSnapshotMsg struct {
	generation int
	items      []*expense.Expense
	updates    <-chan []*expense.Expense
}

type expenseActionMsg struct {
	status string
	err    error
}

func (m ExpensesModel) subscribeCmd() tea.Cmd {
	filter := expense.ListFilter{SortBy: expense.SortByDate}
	if m.sortByAmount {
		filter.SortBy = expense.SortByAmount
	}

	generation := m.generation + 1

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		updates, err := m.expenses.Subscribe(ctx, m.userID, filter)
		if err != nil {
			cancel()
			return expensesSubscribedMsg{err: err}
		}

		return expensesSubscribedMsg{generation: generation, updates: updates, cancel: cancel}
	}
}

// waitForExpenses blocks until the next snapshot. A closed channel ends the loop.
func waitForExpenses(generation int, updates <-chan []*expense.Expense) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-updates
		if !ok {
			return nil
		}

		return expensesSnapshotMsg{generation: generation, items: items, updates: updates}
	}
}

func sumAmounts(items []*expense.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}

	return total
}
