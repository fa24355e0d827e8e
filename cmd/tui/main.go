package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendly/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/spendly/internal/category"
	categoryStore "github.com/MrJamesThe3rd/spendly/internal/category/store"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/spendly/internal/expense/store"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/live"
	"github.com/MrJamesThe3rd/spendly/internal/logging"
	"github.com/MrJamesThe3rd/spendly/internal/money"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

type model struct {
	userID          string
	money           *money.Formatter
	expenseService  *expense.Service
	categoryService *category.Service
	exportService   *export.Service
	startup         string

	currentView View

	dashboardView  view.DashboardModel
	expensesView   view.ExpensesModel
	addView        view.AddExpenseModel
	categoriesView view.CategoriesModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewDashboard  View = 1
	ViewExpenses   View = 2
	ViewAdd        View = 3
	ViewCategories View = 4
	ViewExport     View = 5
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeSubscriptions()
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.expenseService, m.categoryService, m.money, m.userID)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewExpenses
				m.expensesView = view.NewExpensesModel(m.expenseService, m.categoryService, m.money, m.userID)

				return m, m.expensesView.Init()
			case "3":
				m.currentView = ViewAdd
				m.addView = view.NewAddExpenseModel(m.expenseService, m.categoryService, m.money, m.userID)

				return m, m.addView.Init()
			case "4":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.categoryService, m.userID)

				return m, m.categoriesView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.userID)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewExpenses:
		var newModel tea.Model
		newModel, cmd = m.expensesView.Update(msg)
		m.expensesView = newModel.(view.ExpensesModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddExpenseModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) closeSubscriptions() {
	m.dashboardView.Close()
	m.expensesView.Close()
	m.categoriesView.Close()
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		menu := "Spendly\n\n" +
			"1. Dashboard\n" +
			"2. Expenses\n" +
			"3. Add Expense\n" +
			"4. Categories\n" +
			"5. Export\n\n" +
			"q. Quit"

		if m.startup != "" {
			menu += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.startup)
		}

		return lipgloss.NewStyle().Padding(2).Render(menu)
	case ViewDashboard:
		current = m.dashboardView
	case ViewExpenses:
		current = m.expensesView
	case ViewAdd:
		current = m.addView
	case ViewCategories:
		current = m.categoriesView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.Title() + " · " + current.ShortHelp())

	return current.View() + "\n" + help
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.TUI.UserID == "" {
		return errors.New("TUI_USER_ID is not set")
	}

	// The terminal belongs to Bubble Tea, so logs go to a file when one is configured.
	logOut := io.Discard
	if path := cfg.TUI.LogFile; path != "" {
		f, err := tea.LogToFile(path, "spendly")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		logOut = f
	}

	logger := logging.For(logging.New(logOut, cfg.App.LogLevel, cfg.App.LogFormat), logging.ComponentTUI)
	slog.SetDefault(logger)

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	hub := live.NewHub()

	var (
		expenses        = expenseStore.New(db)
		expenseService  = expense.NewService(expenses, hub, expense.WithLogger(logger))
		categoryService = category.NewService(categoryStore.New(db), hub, logger)
		sweeper         = retention.NewSweeper(expenses, logger)
		formatter       = money.NewFormatter(cfg.App.CurrencySymbol)
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seeded, err := categoryService.EnsureDefaults(ctx, cfg.TUI.UserID)
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	startup := ""

	// A failed sweep is retried on the next start; it never blocks the client.
	deleted, err := sweeper.Sweep(ctx, cfg.TUI.UserID, time.Now())
	switch {
	case err != nil:
		startup = fmt.Sprintf("Retention sweep failed: %v", err)
	case deleted > 0:
		startup = fmt.Sprintf("Removed %d expense(s) older than %d months.", deleted, retention.Months)
	case seeded > 0:
		startup = fmt.Sprintf("Welcome, %s. Added %d starter categories.", cfg.TUI.DisplayName, seeded)
	}

	listenCtx, stopListening := context.WithCancel(context.Background())
	defer stopListening()

	// Picks up changes made through the API while the TUI is open.
	go func() {
		if err := live.NewListener(cfg.ConnectionString(), hub, logger).Run(listenCtx); err != nil {
			logger.Warn("live listener stopped", "error", err)
		}
	}()

	p := tea.NewProgram(model{
		userID:          cfg.TUI.UserID,
		money:           formatter,
		expenseService:  expenseService,
		categoryService: categoryService,
		exportService:   export.NewService(expenseService, formatter),
		startup:         startup,
		currentView:     ViewMenu,
	}, tea.WithAltScreen())

	_, err = p.Run()

	return err
}
