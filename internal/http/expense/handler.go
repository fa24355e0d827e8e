package expense

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/http/stream"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

// Sweeper purges expired expenses before a live listing starts.
type Sweeper interface {
	Sweep(ctx context.Context, userID string, now time.Time) (int, error)
}

type Handler struct {
	svc           *expense.Service
	sweeper       Sweeper
	sweepOnStream bool
	now           func() time.Time
}

func NewHandler(svc *expense.Service, sweeper Sweeper, sweepOnStream bool) *Handler {
	return &Handler{svc: svc, sweeper: sweeper, sweepOnStream: sweepOnStream, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/stream", h.stream)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.amend)
	r.Delete("/{id}", h.delete)
}

type createExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredOn  string          `json:"occurred_on"`
	Category    string          `json:"category"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createExpenseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	occurredOn, err := ParseDate(req.OccurredOn)
	if err != nil {
		respond.Error(w, r, &expense.ValidationError{Field: "occurred_on", Message: err.Error()})
		return
	}

	e, err := h.svc.Create(r.Context(), userID, expense.CreateParams{
		Amount:      req.Amount,
		Description: req.Description,
		OccurredOn:  occurredOn,
		Category:    req.Category,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	expenses, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(expenses))
}

// stream sweeps expired records, then pushes the filtered listing on every change.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if h.sweepOnStream && h.sweeper != nil {
		// A failed sweep is already logged and counted; the listing still opens.
		_, _ = h.sweeper.Sweep(r.Context(), userID, h.now())
	}

	updates, err := h.svc.Subscribe(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.DebugContext(r.Context(), "expense stream opened", "user_id", userID)
	stream.Serve(w, r, updates, toResponseList)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

type amendExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	OccurredOn  *string          `json:"occurred_on,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

func (h *Handler) amend(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req amendExpenseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	params := expense.AmendParams{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}

	if req.OccurredOn != nil {
		t, err := ParseDate(*req.OccurredOn)
		if err != nil {
			respond.Error(w, r, &expense.ValidationError{Field: "occurred_on", Message: err.Error()})
			return
		}

		params.OccurredOn = &t
	}

	e, err := h.svc.Amend(r.Context(), userID, id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request) (expense.ListFilter, error) {
	q := r.URL.Query()
	filter := expense.ListFilter{}

	if q.Has("category") {
		filter.Category = new(q.Get("category"))
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date: %w", err)
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date: %w", err)
		}

		filter.EndDate = new(t)
	}

	switch s := expense.SortField(q.Get("sort")); s {
	case "", expense.SortByDate, expense.SortByAmount:
		filter.SortBy = s
	default:
		return filter, fmt.Errorf("invalid sort %q", s)
	}

	filter.Ascending = q.Get("order") == "asc"

	return filter, nil
}

// ParseDate accepts an RFC 3339 timestamp or a plain date, read as local midnight.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}

	return t, nil
}
