// Package retention deletes expenses that fell out of the rolling twelve month window.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/identity"
	"github.com/MrJamesThe3rd/spendly/internal/metrics"
	"github.com/MrJamesThe3rd/spendly/internal/period"
)

// Months is the length of the retention window.
const Months = 12

//go:generate mockgen -source=sweeper.go -destination=repository_mock.go -package=retention
type Repository interface {
	// DeleteExpensesBefore removes, in one atomic statement, every expense of userID whose
	// occurred_on is strictly before cutoff.
	DeleteExpensesBefore(ctx context.Context, userID string, cutoff time.Time) (int, error)
}

type Sweeper struct {
	repo   Repository
	logger *slog.Logger
}

func NewSweeper(repo Repository, logger *slog.Logger) *Sweeper {
	return &Sweeper{repo: repo, logger: logger}
}

// Cutoff is midnight of the same calendar date twelve months before now, clamped to the end
// of a shorter month. Records on or after it are kept.
func Cutoff(now time.Time) time.Time {
	return period.StartOfDay(period.AddMonths(now, -Months))
}

// Sweep deletes the user's expired expenses and returns how many went. It does not retry;
// a failure is logged and returned with a zero count so callers can carry on.
func (s *Sweeper) Sweep(ctx context.Context, userID string, now time.Time) (int, error) {
	if userID == "" {
		return 0, identity.ErrNotAuthenticated
	}

	cutoff := Cutoff(now)

	deleted, err := s.repo.DeleteExpensesBefore(ctx, userID, cutoff)
	if err != nil {
		metrics.RecordSweepFailure()
		s.logger.ErrorContext(ctx, "retention sweep failed",
			"user_id", userID, "cutoff", cutoff.Format(time.DateOnly), "error", err)

		return 0, fmt.Errorf("sweeping expenses: %w", err)
	}

	metrics.RecordSweep(deleted)

	if deleted > 0 {
		s.logger.InfoContext(ctx, "retention sweep removed expired expenses",
			"user_id", userID, "cutoff", cutoff.Format(time.DateOnly), "deleted", deleted)
	}

	return deleted, nil
}
