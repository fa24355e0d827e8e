package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/expense"
)

type expenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredOn  time.Time       `json:"occurred_on"`
	Category    string          `json:"category,omitempty"`
	Label       string          `json:"category_label"`
	AmendCount  int             `json:"amend_count"`
	AmendsLeft  int             `json:"amends_left"`
	CanAmend    bool            `json:"can_amend"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		OccurredOn:  e.OccurredOn,
		Category:    e.Category,
		Label:       e.CategoryLabel(),
		AmendCount:  e.AmendCount,
		AmendsLeft:  max(expense.MaxAmends-e.AmendCount, 0),
		CanAmend:    expense.CanAmend(e),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toResponseList(expenses []*expense.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	return resp
}
