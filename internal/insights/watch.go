package insights

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
)

type ExpenseSubscriber interface {
	Subscribe(ctx context.Context, userID string, filter expense.ListFilter) (<-chan []*expense.Expense, error)
}

// CategorySubscriber signals category changes through Subscribe. ListAll supplies the full set,
// archived included, so old expenses keep their colors.
type CategorySubscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan []*category.Category, error)
	ListAll(ctx context.Context, userID string) ([]*category.Category, error)
}

// Watch rebuilds the dashboard for r every time the user's expenses or categories change.
// The first dashboard is sent once both have loaded. The channel closes when ctx is done.
func Watch(
	ctx context.Context,
	expenses ExpenseSubscriber,
	categories CategorySubscriber,
	userID string,
	r Range,
	now func() time.Time,
) (<-chan Dashboard, error) {
	ctx, cancel := context.WithCancel(ctx)

	records, err := expenses.Subscribe(ctx, userID, expense.ListFilter{})
	if err != nil {
		cancel()
		return nil, err
	}

	categoryChanges, err := categories.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Dashboard, 1)

	go func() {
		defer close(out)
		defer cancel()

		var (
			current []*expense.Expense
			all     []*category.Category
			ready   struct{ records, categories bool }
		)

		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-records:
				if !ok {
					return
				}

				current, ready.records = snapshot, true
			case _, ok := <-categoryChanges:
				if !ok {
					return
				}

				loaded, err := categories.ListAll(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}

					slog.WarnContext(ctx, "refreshing dashboard categories", "user_id", userID, "error", err)

					continue
				}

				all, ready.categories = loaded, true
			}

			if !ready.records || !ready.categories {
				continue
			}

			select {
			case out <- Build(current, all, r, now()):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
