package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

//go:generate mockgen -source=provider.go -destination=revocation_mock.go -package=identity
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Provider issues and verifies HS256 bearer tokens.
type Provider struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(secret, issuer string, ttl time.Duration, revocations RevocationStore, opts ...Option) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("auth secret is required")
	}

	p := &Provider{
		secret:      []byte(secret),
		issuer:      issuer,
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Issue signs a token for id.
func (p *Provider) Issue(id Identity) (string, error) {
	if id.UserID == "" {
		return "", errors.New("user id is required")
	}

	if id.Email != "" {
		if err := checkmail.ValidateFormat(id.Email); err != nil {
			return "", fmt.Errorf("validating email: %w", err)
		}
	}

	now := p.now()
	c := claims{
		Name:  id.DisplayName,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Authenticate verifies raw and returns the identity it carries.
func (p *Provider) Authenticate(ctx context.Context, raw string) (Identity, error) {
	c, err := p.parse(raw)
	if err != nil {
		return Identity{}, err
	}

	revoked, err := p.revocations.IsRevoked(ctx, c.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("checking revocation: %w", err)
	}

	if revoked {
		return Identity{}, fmt.Errorf("%w: token revoked", ErrNotAuthenticated)
	}

	return Identity{
		UserID:      c.Subject,
		DisplayName: c.Name,
		Email:       c.Email,
	}, nil
}

// SignOut revokes raw until it would have expired anyway.
func (p *Provider) SignOut(ctx context.Context, raw string) error {
	c, err := p.parse(raw)
	if err != nil {
		return err
	}

	if err := p.revocations.Revoke(ctx, c.ID, c.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	return nil
}

func (p *Provider) parse(raw string) (*claims, error) {
	if raw == "" {
		return nil, ErrNotAuthenticated
	}

	var c claims

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	if c.Subject == "" || c.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", ErrNotAuthenticated)
	}

	if c.Email != "" {
		if err := checkmail.ValidateFormat(c.Email); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
	}

	return &c, nil
}
