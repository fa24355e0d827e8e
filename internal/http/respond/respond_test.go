package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

func TestStatus(t *testing.T) {
	type testCase struct {
		name string
		err  error
		want int
	}

	tests := []testCase{
		{name: "ExpenseValidation", err: &expense.ValidationError{Field: "amount"}, want: http.StatusBadRequest},
		{name: "CategoryValidation", err: fmt.Errorf("wrap: %w", &category.ValidationError{Field: "label"}), want: http.StatusBadRequest},
		{name: "NotAuthenticated", err: identity.ErrNotAuthenticated, want: http.StatusUnauthorized},
		{name: "ExpenseNotFound", err: expense.ErrNotFound, want: http.StatusNotFound},
		{name: "CategoryNotFound", err: category.ErrNotFound, want: http.StatusNotFound},
		{name: "EditLimit", err: expense.ErrEditLimitExceeded, want: http.StatusLocked},
		{name: "AmendConflict", err: expense.ErrAmendConflict, want: http.StatusConflict},
		{name: "Archived", err: category.ErrArchived, want: http.StatusConflict},
		{name: "StoreUnavailable", err: fmt.Errorf("listing: %w", database.Unavailable(errors.New("conn refused"))), want: http.StatusServiceUnavailable},
		{name: "Unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, respond.Status(tt.err))
		})
	}
}

func TestError_Body(t *testing.T) {
	type testCase struct {
		name      string
		err       error
		wantError string
		wantField string
	}

	tests := []testCase{
		{
			name:      "ValidationCarriesField",
			err:       &expense.ValidationError{Field: "description", Message: "must not be empty"},
			wantError: "invalid description: must not be empty",
			wantField: "description",
		},
		{
			name:      "InternalIsHidden",
			err:       errors.New("pq: secret detail"),
			wantError: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantField, body["field"])
		})
	}
}
