package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/http/auth"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type SignOuter interface {
	SignOut(ctx context.Context, raw string) error
}

type Handler struct {
	categories *category.Service
	signOut    SignOuter
}

func NewHandler(categories *category.Service, signOut SignOuter) *Handler {
	return &Handler{categories: categories, signOut: signOut}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.current)
	r.Post("/signout", h.signout)
}

type sessionResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Seeded      int    `json:"seeded_categories"`
}

// current returns the signed-in identity. The first call for a user seeds the default categories.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, r, identity.ErrNotAuthenticated)
		return
	}

	seeded, err := h.categories.EnsureDefaults(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		Seeded:      seeded,
	})
}

func (h *Handler) signout(w http.ResponseWriter, r *http.Request) {
	if err := h.signOut.SignOut(r.Context(), auth.Token(r)); err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "signed out")
	w.WriteHeader(http.StatusNoContent)
}
