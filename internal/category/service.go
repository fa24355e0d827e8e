package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/live"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	// SeedDefaults inserts defaults only when the user owns no categories at all and returns
	// how many were inserted.
	SeedDefaults(ctx context.Context, userID string, defaults []*Category) (int, error)
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, userID string, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context, userID string, includeArchived bool) ([]*Category, error)
	SetState(ctx context.Context, userID string, id uuid.UUID, state State) error
}

type Notifier interface {
	Watch(key string) (<-chan struct{}, func())
	Notify(key string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

type CreateParams struct {
	Label string
	Color string
	Icon  string
}

type UpdateParams struct {
	Label *string
	Color *string
	Icon  *string
}

// EnsureDefaults seeds the default categories the first time a user shows up.
func (s *Service) EnsureDefaults(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, identity.ErrNotAuthenticated
	}

	n, err := s.repo.SeedDefaults(ctx, userID, Defaults())
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.InfoContext(ctx, "seeded default categories", "user_id", userID, "count", n)
		s.changed(userID)
	}

	return n, nil
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Category, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	c := &Category{
		UserID: userID,
		Label:  strings.TrimSpace(params.Label),
		Color:  params.Color,
		Icon:   params.Icon,
		Kind:   KindCustom,
		State:  StateActive,
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.changed(userID)

	return c, nil
}

func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, params UpdateParams) (*Category, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	c, err := s.repo.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !c.Active() {
		return nil, ErrArchived
	}

	if params.Label != nil {
		c.Label = strings.TrimSpace(*params.Label)
	}

	if params.Color != nil {
		if !ValidColor(*params.Color) {
			return nil, &ValidationError{Field: "color", Message: "must be one of the palette colors"}
		}

		c.Color = *params.Color
	}

	if params.Icon != nil {
		c.Icon = *params.Icon
	}

	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.changed(userID)

	return c, nil
}

// Archive hides the category from active lists. Expenses referencing it keep resolving.
func (s *Service) Archive(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return identity.ErrNotAuthenticated
	}

	c, err := s.repo.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}

	if !c.Active() {
		return nil
	}

	if err := s.repo.SetState(ctx, userID, id, StateArchived); err != nil {
		return err
	}

	s.changed(userID)

	return nil
}

// List returns the active categories.
func (s *Service) List(ctx context.Context, userID string) ([]*Category, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	return s.repo.ListCategories(ctx, userID, false)
}

// ListAll includes archived categories, for resolving labels on old expenses.
func (s *Service) ListAll(ctx context.Context, userID string) ([]*Category, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	return s.repo.ListCategories(ctx, userID, true)
}

// Subscribe streams the active categories, starting with the current list.
func (s *Service) Subscribe(ctx context.Context, userID string) (<-chan []*Category, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	changes, stop := s.notifier.Watch(live.Key(live.TopicCategories, userID))

	snapshot, err := s.List(ctx, userID)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan []*Category, 1)
	out <- snapshot

	go func() {
		defer close(out)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
			}

			snapshot, err := s.List(ctx, userID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				s.logger.WarnContext(ctx, "refreshing category subscription", "user_id", userID, "error", err)

				continue
			}

			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *Service) validate(ctx context.Context, c *Category) error {
	switch n := utf8.RuneCountInString(c.Label); {
	case n == 0:
		return &ValidationError{Field: "label", Message: "must not be empty"}
	case n > MaxLabelLength:
		return &ValidationError{Field: "label", Message: fmt.Sprintf("must be at most %d characters", MaxLabelLength)}
	}

	if c.Kind == KindCustom && !ValidColor(c.Color) {
		return &ValidationError{Field: "color", Message: "must be one of the palette colors"}
	}

	if !ValidIcon(c.Icon) {
		return &ValidationError{Field: "icon", Message: "unknown icon"}
	}

	active, err := s.repo.ListCategories(ctx, c.UserID, false)
	if err != nil {
		return err
	}

	for _, other := range active {
		if other.ID != c.ID && strings.EqualFold(other.Label, c.Label) {
			return &ValidationError{Field: "label", Message: "already in use"}
		}
	}

	return nil
}

func (s *Service) changed(userID string) {
	s.notifier.Notify(live.Key(live.TopicCategories, userID))
}
