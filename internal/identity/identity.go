package identity

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned when an operation needs a signed-in user and there is none.
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the signed-in user as asserted by the token.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// UserID returns the user id carried by ctx, or ErrNotAuthenticated.
func UserID(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}

	return id.UserID, nil
}
