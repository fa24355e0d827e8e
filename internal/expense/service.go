package expense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/live"
	"github.com/MrJamesThe3rd/spendly/internal/metrics"
	"github.com/MrJamesThe3rd/spendly/internal/period"
	"github.com/MrJamesThe3rd/spendly/internal/retention"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, userID string, id uuid.UUID) (*Expense, error)
	ListExpenses(ctx context.Context, userID string, filter ListFilter) ([]*Expense, error)
	DeleteExpense(ctx context.Context, userID string, id uuid.UUID) error

	// AmendExpense writes e only if the stored amend count still equals prevAmendCount.
	// It reports false when another writer got there first.
	AmendExpense(ctx context.Context, e *Expense, prevAmendCount int) (bool, error)
}

// Notifier is the change fan-out subscriptions are driven by.
type Notifier interface {
	Watch(key string) (<-chan struct{}, func())
	Notify(key string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(repo Repository, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Amount      decimal.Decimal
	Description string
	OccurredOn  time.Time
	Category    string
}

// AmendParams holds the fields to change; nil fields are left as they are.
type AmendParams struct {
	Amount      *decimal.Decimal
	Description *string
	OccurredOn  *time.Time
	Category    *string
}

type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

// ListFilter narrows a listing. Results are ordered by date, newest first, unless stated otherwise.
type ListFilter struct {
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    SortField
	Ascending bool
}

const maxCategoryLength = 20

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Expense, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	e := &Expense{
		UserID:      userID,
		Amount:      params.Amount,
		Description: strings.TrimSpace(params.Description),
		OccurredOn:  params.OccurredOn,
		Category:    strings.TrimSpace(params.Category),
	}
	if err := s.validate(e, true); err != nil {
		return nil, err
	}

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	s.changed(userID)

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Expense, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	return s.repo.GetExpense(ctx, userID, id)
}

// List returns the user's expenses. EndDate is inclusive of its whole day.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]*Expense, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	if filter.EndDate != nil {
		filter.EndDate = new(period.EndOfDay(*filter.EndDate))
	}

	if filter.SortBy == "" {
		filter.SortBy = SortByDate
	}

	return s.repo.ListExpenses(ctx, userID, filter)
}

// Amend applies params to the expense and bumps its amend count. Locked expenses are refused
// before anything is written. The write is conditional on the amend count read here; if another
// session amended in between, the expense is re-read and the write retried once.
func (s *Service) Amend(ctx context.Context, userID string, id uuid.UUID, params AmendParams) (*Expense, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	current, err := s.repo.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if !CanAmend(current) {
			metrics.RecordAmendRejected("edit_limit")
			return nil, ErrEditLimitExceeded
		}

		next := s.merge(current, params)
		if err := s.validate(next, params.OccurredOn != nil); err != nil {
			return nil, err
		}

		ok, err := s.repo.AmendExpense(ctx, next, current.AmendCount)
		if err != nil {
			return nil, fmt.Errorf("amending expense: %w", err)
		}

		if ok {
			s.changed(userID)
			return next, nil
		}

		if attempt > 0 {
			metrics.RecordAmendRejected("conflict")
			return nil, ErrAmendConflict
		}

		current, err = s.repo.GetExpense(ctx, userID, id)
		if err != nil {
			return nil, err
		}
	}
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return identity.ErrNotAuthenticated
	}

	if err := s.repo.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	s.changed(userID)

	return nil
}

// Subscribe sends the current listing right away and a fresh one after every change to the
// user's expenses. The channel is closed once ctx is done.
func (s *Service) Subscribe(ctx context.Context, userID string, filter ListFilter) (<-chan []*Expense, error) {
	if userID == "" {
		return nil, identity.ErrNotAuthenticated
	}

	changes, stop := s.notifier.Watch(live.Key(live.TopicExpenses, userID))

	snapshot, err := s.List(ctx, userID, filter)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan []*Expense, 1)
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

			snapshot, err := s.List(ctx, userID, filter)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				s.logger.WarnContext(ctx, "refreshing expense subscription", "user_id", userID, "error", err)

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

func (s *Service) merge(current *Expense, params AmendParams) *Expense {
	next := *current

	if params.Amount != nil {
		next.Amount = *params.Amount
	}

	if params.Description != nil {
		next.Description = strings.TrimSpace(*params.Description)
	}

	if params.OccurredOn != nil {
		next.OccurredOn = *params.OccurredOn
	}

	if params.Category != nil {
		next.Category = strings.TrimSpace(*params.Category)
	}

	next.AmendCount = current.AmendCount + 1
	next.UpdatedAt = new(s.now())

	return &next
}

func (s *Service) validate(e *Expense, checkDate bool) error {
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}

	if e.Description == "" {
		return &ValidationError{Field: "description", Message: "must not be empty"}
	}

	if utf8.RuneCountInString(e.Category) > maxCategoryLength {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("must be at most %d characters", maxCategoryLength)}
	}

	if !checkDate {
		return nil
	}

	now := s.now()

	switch {
	case e.OccurredOn.IsZero():
		return &ValidationError{Field: "occurred_on", Message: "is required"}
	case e.OccurredOn.After(period.EndOfDay(now)):
		return &ValidationError{Field: "occurred_on", Message: "must not be in the future"}
	case e.OccurredOn.Before(retention.Cutoff(now)):
		return &ValidationError{Field: "occurred_on", Message: fmt.Sprintf("must be within the last %d months", retention.Months)}
	}

	return nil
}

func (s *Service) changed(userID string) {
	s.notifier.Notify(live.Key(live.TopicExpenses, userID))
}
