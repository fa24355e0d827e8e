package category

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/http/stream"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stream", h.stream)
	r.Get("/palette", h.palette)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.archive)
}

type categoryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Label     string         `json:"label"`
	Color     string         `json:"color"`
	Hex       string         `json:"hex"`
	Icon      string         `json:"icon"`
	Kind      category.Kind  `json:"kind"`
	State     category.State `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Label:     c.Label,
		Color:     c.Color,
		Hex:       category.Hex(c.Color),
		Icon:      category.ResolveIcon(c.Icon),
		Kind:      c.Kind,
		State:     c.State,
		CreatedAt: c.CreatedAt,
	}
}

func toResponseList(categories []*category.Category) []categoryResponse {
	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toResponse(c)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("include_archived"))

	var categories []*category.Category
	if includeArchived {
		categories, err = h.svc.ListAll(r.Context(), userID)
	} else {
		categories, err = h.svc.List(r.Context(), userID)
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(categories))
}

type createCategoryRequest struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createCategoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), userID, category.CreateParams{
		Label: req.Label,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	updates, err := h.svc.Subscribe(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	stream.Serve(w, r, updates, toResponseList)
}

type paletteResponse struct {
	Colors []paletteColor `json:"colors"`
	Icons  []string       `json:"icons"`
}

type paletteColor struct {
	Token string `json:"token"`
	Hex   string `json:"hex"`
}

func (h *Handler) palette(w http.ResponseWriter, _ *http.Request) {
	resp := paletteResponse{
		Colors: make([]paletteColor, len(category.Palette)),
		Icons:  category.Icons,
	}

	for i, token := range category.Palette {
		resp.Colors[i] = paletteColor{Token: token, Hex: category.Hex(token)}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type updateCategoryRequest struct {
	Label *string `json:"label,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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

	var req updateCategoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), userID, id, category.UpdateParams{
		Label: req.Label,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

// archive answers DELETE. Categories are never removed so historical expenses keep their label.
func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Archive(r.Context(), userID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
