package insights

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/http/stream"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/insights"
)

// DefaultPreset applies when the request names no range.
const DefaultPreset = insights.Preset1M

type Handler struct {
	expenses   *expense.Service
	categories *category.Service
	now        func() time.Time
}

func NewHandler(expenses *expense.Service, categories *category.Service) *Handler {
	return &Handler{expenses: expenses, categories: categories, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/stream", h.stream)
}

type categoryTotalResponse struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
	Hex   string          `json:"hex"`
	Icon  string          `json:"icon"`
}

type dashboardResponse struct {
	Window     insights.Window         `json:"window"`
	Stats      insights.Stats          `json:"stats"`
	AllTime    insights.Stats          `json:"all_time"`
	Series     []insights.Bucket       `json:"series"`
	Categories []categoryTotalResponse `json:"categories"`
	Periods    insights.Periods        `json:"periods"`
}

func toResponse(d insights.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Window:     d.Window,
		Stats:      d.Stats,
		AllTime:    d.AllTime,
		Series:     d.Series,
		Categories: make([]categoryTotalResponse, len(d.Categories)),
		Periods:    d.Periods,
	}

	for i, c := range d.Categories {
		resp.Categories[i] = categoryTotalResponse{
			Name:  c.Name,
			Total: c.Total,
			Color: c.Color,
			Hex:   category.Hex(c.Color),
			Icon:  c.Icon,
		}
	}

	return resp
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	records, err := h.expenses.List(r.Context(), userID, expense.ListFilter{})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	categories, err := h.categories.ListAll(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(insights.Build(records, categories, rng, h.now())))
}

// stream pushes a rebuilt dashboard every time the user's expenses or categories change.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	dashboards, err := insights.Watch(r.Context(), h.expenses, h.categories, userID, rng, h.now)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.DebugContext(r.Context(), "insights stream opened", "user_id", userID)
	stream.Serve(w, r, dashboards, toResponse)
}

func parseRange(r *http.Request) (insights.Range, error) {
	q := r.URL.Query()

	switch name := q.Get("range"); name {
	case "":
		return insights.PresetRange(DefaultPreset), nil
	case "custom":
		start, err := time.ParseInLocation(time.DateOnly, q.Get("start_date"), time.Local)
		if err != nil {
			return insights.Range{}, fmt.Errorf("invalid start_date: %w", err)
		}

		end, err := time.ParseInLocation(time.DateOnly, q.Get("end_date"), time.Local)
		if err != nil {
			return insights.Range{}, fmt.Errorf("invalid end_date: %w", err)
		}

		rng := insights.CustomRange(start, end)

		return rng, rng.Validate()
	default:
		p, ok := insights.ParsePreset(name)
		if !ok {
			return insights.Range{}, fmt.Errorf("unknown range %q", name)
		}

		return insights.PresetRange(p), nil
	}
}
