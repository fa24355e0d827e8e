package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	categoryStore "github.com/MrJamesThe3rd/spendly/internal/category/store"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/spendly/internal/expense/store"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	spendlyHttp "github.com/MrJamesThe3rd/spendly/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/spendly/internal/http/category"
	expenseHandler "github.com/MrJamesThe3rd/spendly/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/spendly/internal/http/export"
	insightsHandler "github.com/MrJamesThe3rd/spendly/internal/http/insights"
	retentionHandler "github.com/MrJamesThe3rd/spendly/internal/http/retention"
	sessionHandler "github.com/MrJamesThe3rd/spendly/internal/http/session"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
	identityStore "github.com/MrJamesThe3rd/spendly/internal/identity/store"
	"github.com/MrJamesThe3rd/spendly/internal/live"
	"github.com/MrJamesThe3rd/spendly/internal/logging"
	"github.com/MrJamesThe3rd/spendly/internal/money"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(logging.For(logger, logging.ComponentAPI))

	if err := run(cfg, logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	provider, err := identity.NewProvider(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, identityStore.New(db))
	if err != nil {
		return fmt.Errorf("creating identity provider: %w", err)
	}

	var (
		expenses        = expenseStore.New(db)
		expenseService  = expense.NewService(expenses, hub, expense.WithLogger(logging.For(logger, logging.ComponentExpense)))
		categoryService = category.NewService(categoryStore.New(db), hub, logging.For(logger, logging.ComponentCategory))
		sweeper         = retention.NewSweeper(expenses, logging.For(logger, logging.ComponentRetention))
		exportService   = export.NewService(expenseService, money.NewFormatter(cfg.App.CurrencySymbol))
		listener        = live.NewListener(cfg.ConnectionString(), hub, logging.For(logger, logging.ComponentLive))
	)

	router := spendlyHttp.New(
		spendlyHttp.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Authenticator:  provider,
			DB:             db,
		},
		spendlyHttp.Handlers{
			Session:    sessionHandler.NewHandler(categoryService, provider),
			Expenses:   expenseHandler.NewHandler(expenseService, sweeper, cfg.Retention.SweepOnStream),
			Categories: categoryHandler.NewHandler(categoryService),
			Insights:   insightsHandler.NewHandler(expenseService, categoryService),
			Export:     exportHandler.NewHandler(exportService),
			Retention:  retentionHandler.NewHandler(sweeper),
		},
	)

	server := spendlyHttp.NewServer(router, spendlyHttp.ServerOptions{
		Addr:     fmt.Sprintf(":%d", cfg.App.Port),
		Timeout:  cfg.Server.Timeout,
		ErrorLog: slog.NewLogLogger(logging.For(logger, logging.ComponentHTTP).Handler(), slog.LevelWarn),
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "port", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		return listener.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down")

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
