package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/http/auth"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type stubAuthenticator map[string]identity.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, raw string) (identity.Identity, error) {
	if raw == "broken" {
		return identity.Identity{}, errors.New("revocation store down")
	}

	id, ok := s[raw]
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: bad token", identity.ErrNotAuthenticated)
	}

	return id, nil
}

func TestMiddleware(t *testing.T) {
	tokens := stubAuthenticator{"good": {UserID: "u1", DisplayName: "Asha"}}

	type testCase struct {
		name       string
		method     string
		target     string
		header     string
		wantStatus int
		wantUser   string
	}

	tests := []testCase{
		{name: "Bearer", method: http.MethodGet, target: "/", header: "Bearer good", wantStatus: http.StatusOK, wantUser: "u1"},
		{name: "LowercaseScheme", method: http.MethodPost, target: "/", header: "bearer good", wantStatus: http.StatusOK, wantUser: "u1"},
		{name: "QueryOnGet", method: http.MethodGet, target: "/?access_token=good", wantStatus: http.StatusOK, wantUser: "u1"},
		{name: "QueryIgnoredOnPost", method: http.MethodPost, target: "/?access_token=good", wantStatus: http.StatusUnauthorized},
		{name: "HeaderWinsOverQuery", method: http.MethodGet, target: "/?access_token=nope", header: "Bearer good", wantStatus: http.StatusOK, wantUser: "u1"},
		{name: "Missing", method: http.MethodGet, target: "/", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", method: http.MethodGet, target: "/", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "Invalid", method: http.MethodGet, target: "/", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "AuthenticatorFailure", method: http.MethodGet, target: "/", header: "Bearer broken", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string

			h := auth.LiftQueryToken(auth.Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = identity.UserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestLiftQueryToken(t *testing.T) {
	type testCase struct {
		name       string
		method     string
		target     string
		wantHeader string
		wantURI    string
	}

	tests := []testCase{
		{name: "Get", method: http.MethodGet, target: "/stream?access_token=SECRET.JWT.VALUE", wantHeader: "Bearer SECRET.JWT.VALUE", wantURI: "/stream"},
		{name: "KeepsOtherParams", method: http.MethodGet, target: "/insights/stream?range=7d&access_token=SECRET", wantHeader: "Bearer SECRET", wantURI: "/insights/stream?range=7d"},
		{name: "PostStrippedNotLifted", method: http.MethodPost, target: "/expenses?access_token=SECRET", wantURI: "/expenses"},
		{name: "NoToken", method: http.MethodGet, target: "/expenses?sort=amount", wantURI: "/expenses?sort=amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request

			h := auth.LiftQueryToken(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r
			}))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			h.ServeHTTP(httptest.NewRecorder(), req)

			require.NotNil(t, got)
			assert.Equal(t, tt.wantHeader, got.Header.Get("Authorization"))
			assert.Equal(t, tt.wantURI, got.RequestURI)
			assert.Equal(t, tt.wantURI, got.URL.RequestURI())
			assert.Equal(t, tt.target, req.RequestURI)
		})
	}
}
