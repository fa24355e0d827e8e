package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/spendly/internal/http/auth"
	"github.com/MrJamesThe3rd/spendly/internal/http/category"
	"github.com/MrJamesThe3rd/spendly/internal/http/expense"
	"github.com/MrJamesThe3rd/spendly/internal/http/export"
	"github.com/MrJamesThe3rd/spendly/internal/http/insights"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/http/retention"
	"github.com/MrJamesThe3rd/spendly/internal/http/session"
	"github.com/MrJamesThe3rd/spendly/internal/metrics"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Session    *session.Handler
	Expenses   *expense.Handler
	Categories *category.Handler
	Insights   *insights.Handler
	Export     *export.Handler
	Retention  *retention.Handler
}

type Options struct {
	AllowedOrigins []string
	Authenticator  auth.Authenticator
	DB             Pinger
}

func New(opts Options, v1 Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(auth.LiftQueryToken)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(observe)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthz(opts.DB))
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Authenticator))

		r.Route("/session", v1.Session.Routes)

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Expenses.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Categories.Routes(r)
		})

		r.Route("/insights", v1.Insights.Routes)

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Export.Routes(r)
		})

		r.Route("/retention", v1.Retention.Routes)
	})

	return router
}

// observe records request durations by route pattern, so ids in paths do not explode cardinality.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
