package retention

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

type Handler struct {
	sweeper *retention.Sweeper
	now     func() time.Time
}

func NewHandler(sweeper *retention.Sweeper) *Handler {
	return &Handler{sweeper: sweeper, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sweep", h.sweep)
}

type sweepResponse struct {
	Deleted int       `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	now := h.now()

	deleted, err := h.sweeper.Sweep(r.Context(), userID, now)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sweepResponse{Deleted: deleted, Cutoff: retention.Cutoff(now)})
}
