package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmends is how many times a persisted expense can be amended before it locks.
const MaxAmends = 2

// Uncategorized labels expenses without a category.
const Uncategorized = "Uncategorized"

// Expense is a single spend owned by one user.
type Expense struct {
	ID          uuid.UUID
	UserID      string
	Amount      decimal.Decimal
	Description string
	OccurredOn  time.Time
	Category    string // Empty when uncategorized
	AmendCount  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CanAmend reports whether e still accepts an amend.
func CanAmend(e *Expense) bool {
	return e.AmendCount < MaxAmends
}

// CategoryLabel returns the category, or Uncategorized when there is none.
func (e *Expense) CategoryLabel() string {
	if e.Category == "" {
		return Uncategorized
	}

	return e.Category
}
