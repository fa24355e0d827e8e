// Package auth guards routes with the bearer token issued by the identity provider.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (identity.Identity, error)
}

// Middleware rejects requests without a valid token and stores the identity in the request
// context for the handlers.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := Token(r)
			if raw == "" {
				respond.Error(w, r, identity.ErrNotAuthenticated)
				return
			}

			id, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

// QueryParam carries the token for clients that cannot set headers, such as EventSource.
const QueryParam = "access_token"

// LiftQueryToken moves a GET request's access_token query parameter into the Authorization
// header and strips it from the URL of every request, so nothing downstream logs it. It must
// run before the request logger.
func LiftQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(QueryParam) {
			next.ServeHTTP(w, r)
			return
		}

		token := q.Get(QueryParam)
		q.Del(QueryParam)

		r = r.Clone(r.Context())
		r.URL.RawQuery = q.Encode()
		r.RequestURI = r.URL.RequestURI()

		if r.Method == http.MethodGet && token != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}

		next.ServeHTTP(w, r)
	})
}

// Token extracts the raw token from a Bearer Authorization header.
func Token(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
