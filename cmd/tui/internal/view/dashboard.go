package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/insights"
	"github.com/MrJamesThe3rd/spendly/internal/money"
)

const barWidth = 40

type dashboardState int

const (
	dashboardStateRange dashboardState = iota
	dashboardStateLoading
	dashboardStateReady
)

// DashboardModel shows the insights for a range and rebuilds them whenever the data changes.
type DashboardModel struct {
	CommonModel
	expenses   insights.ExpenseSubscriber
	categories insights.CategorySubscriber
	money      *money.Formatter
	userID     string
	now        func() time.Time

	state   dashboardState
	picker  RangePicker
	spinner spinner.Model
	rng     insights.Range
	data    insights.Dashboard
	err     error

	generation int
	cancel     context.CancelFunc
}

func NewDashboardModel(expenses insights.ExpenseSubscriber, categories insights.CategorySubscriber, formatter *money.Formatter, userID string) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DashboardModel{
		expenses:   expenses,
		categories: categories,
		money:      formatter,
		userID:     userID,
		now:        time.Now,
		state:      dashboardStateRange,
		picker:     NewRangePicker(insights.Preset1M, false),
		spinner:    s,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashboardStateReady {
		return "Esc: back | p: pick range"
	}

	return "Esc: back | Enter: select"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// Close stops the live subscription.
func (m DashboardModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RangeSelectedMsg:
		m.rng = msg.Range
		m.state = dashboardStateLoading

		return m, tea.Batch(m.spinner.Tick, m.subscribeCmd())

	case dashboardSubscribedMsg:
		if msg.err != nil {
			m.state = dashboardStateReady
			m.err = msg.err

			return m, nil
		}

		m.Close()
		m.generation = msg.generation
		m.cancel = msg.cancel

		return m, waitForDashboard(msg.generation, msg.updates)

	case dashboardSnapshotMsg:
		if msg.generation != m.generation {
			return m, nil
		}

		// A snapshot arriving while a new range is being picked refreshes the data behind it.
		if m.state == dashboardStateLoading {
			m.state = dashboardStateReady
		}

		m.data = msg.data
		m.err = nil

		return m, waitForDashboard(msg.generation, msg.updates)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil
	}

	switch m.state {
	case dashboardStateRange:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			m.Close()
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case dashboardStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case dashboardStateReady:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.Close()
				return m, Back
			case "p":
				m.picker.Reset()
				m.state = dashboardStateRange

				return m, nil
			}
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	switch m.state {
	case dashboardStateRange:
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	case dashboardStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Crunching numbers...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	d := m.data

	title := "Custom range"
	if !m.rng.IsCustom() {
		title = m.rng.Preset.String()
	}

	heading := headerStyle.Render(fmt.Sprintf("%s  (%s to %s, %s)",
		title, FormatDate(d.Window.Start), FormatDate(d.Window.End), d.Window.Granularity))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		m.cardsView(),
		"",
		m.chartView(),
		"",
		m.categoriesView(),
	))
}

func (m DashboardModel) cardsView() string {
	card := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		MarginRight(1)

	d := m.data

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card.Render(fmt.Sprintf("Total\n%s", m.money.Format(d.Stats.Total))),
		card.Render(fmt.Sprintf("Expenses\n%d", d.Stats.Count)),
		card.Render(fmt.Sprintf("Average\n%s", m.money.Format(d.Stats.Average))),
		card.Render(fmt.Sprintf("Largest\n%s", m.money.Format(d.Stats.Max))),
		card.Render(fmt.Sprintf("Today %s\nWeek  %s\nMonth %s",
			m.money.Format(d.Periods.Today),
			m.money.Format(d.Periods.ThisWeek),
			m.money.Format(d.Periods.ThisMonth),
		)),
	)
}

// chartView draws one horizontal bar per bucket, scaled to the largest bucket.
func (m DashboardModel) chartView() string {
	if len(m.data.Series) == 0 {
		return faintStyle.Render("No data for this range.")
	}

	peak := decimal.Zero
	for _, b := range m.data.Series {
		peak = decimal.Max(peak, b.Total)
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	var sb strings.Builder

	for _, b := range m.data.Series {
		n := 0
		if peak.IsPositive() {
			n = int(b.Total.Mul(decimal.NewFromInt(barWidth)).Div(peak).IntPart())
		}

		fmt.Fprintf(&sb, "%-7s %s%s %s\n", b.Label, bar.Render(strings.Repeat("█", n)), strings.Repeat(" ", barWidth-n), m.money.Format(b.Total))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m DashboardModel) categoriesView() string {
	if len(m.data.Categories) == 0 {
		return ""
	}

	lines := []string{"By category:"}
	for _, c := range m.data.Categories {
		lines = append(lines, fmt.Sprintf("%s %-20s %s", swatch(c.Color), c.Name, m.money.Format(c.Total)))
	}

	return strings.Join(lines, "\n")
}

// Messages

type dashboardSubscribedMsg struct {
	generation int
	updates    <-chan insights.Dashboard
	cancel     context.CancelFunc
	err        error
}

type dashboardSnapshotMsg struct {
	generation int
	data       insights.Dashboard
	updates    <-chan insights.Dashboard
}

func (m DashboardModel) subscribeCmd() tea.Cmd {
	r := m.rng
	generation := m.generation + 1

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		updates, err := insights.Watch(ctx, m.expenses, m.categories, m.userID, r, m.now)
		if err != nil {
			cancel()
			return dashboardSubscribedMsg{err: err}
		}

		return dashboardSubscribedMsg{generation: generation, updates: updates, cancel: cancel}
	}
}

func waitForDashboard(generation int, updates <-chan insights.Dashboard) tea.Cmd {
	return func() tea.Msg {
		data, ok := <-updates
		if !ok {
			return nil
		}

		return dashboardSnapshotMsg{generation: generation, data: data, updates: updates}
	}
}
