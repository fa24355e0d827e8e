// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON request body into v. Unknown fields are rejected.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

// BadRequest reports a malformed request that never reached a service.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Error writes err with the status its kind maps to. Unexpected errors are logged and hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	body := errorResponse{Error: err.Error()}

	var (
		expenseErr  *expense.ValidationError
		categoryErr *category.ValidationError
	)

	switch {
	case errors.As(err, &expenseErr):
		body.Field = expenseErr.Field
	case errors.As(err, &categoryErr):
		body.Field = categoryErr.Field
	}

	switch status {
	case http.StatusInternalServerError:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	case http.StatusServiceUnavailable:
		slog.WarnContext(r.Context(), "store unavailable", "path", r.URL.Path, "error", err)
		body.Error = "store unavailable, try again"
	}

	JSON(w, status, body)
}

func Status(err error) int {
	var (
		expenseErr  *expense.ValidationError
		categoryErr *category.ValidationError
	)

	switch {
	case errors.As(err, &expenseErr), errors.As(err, &categoryErr):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, expense.ErrNotFound), errors.Is(err, category.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, expense.ErrEditLimitExceeded):
		return http.StatusLocked
	case errors.Is(err, expense.ErrAmendConflict), errors.Is(err, category.ErrArchived):
		return http.StatusConflict
	case errors.Is(err, database.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
