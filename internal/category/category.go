package category

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tells seeded categories apart from the ones a user created.
type Kind string

const (
	KindDefault Kind = "default"
	KindCustom  Kind = "custom"
)

// State is the category lifecycle. Categories are archived, never deleted, so old expenses
// keep resolving to them.
type State string

const (
	StateActive   State = "active"
	StateArchived State = "archived"
)

// MaxLabelLength is counted in runes.
const MaxLabelLength = 20

type Category struct {
	ID        uuid.UUID
	UserID    string
	Label     string
	Color     string // Palette token, e.g. bg-red-500
	Icon      string
	Kind      Kind
	State     State
	CreatedAt time.Time
}

func (c *Category) Active() bool {
	return c.State == StateActive
}

var (
	ErrNotFound = errors.New("category not found")
	ErrArchived = errors.New("category is archived")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Defaults returns fresh copies of the categories every user starts with.
func Defaults() []*Category {
	return []*Category{
		{Label: "Food & Drink", Color: "bg-orange-600", Icon: "Coffee", Kind: KindDefault, State: StateActive},
		{Label: "Transport", Color: "bg-slate-600", Icon: "Car", Kind: KindDefault, State: StateActive},
		{Label: "Shopping", Color: "bg-rose-600", Icon: "ShoppingBag", Kind: KindDefault, State: StateActive},
		{Label: "Bills", Color: "bg-emerald-600", Icon: "Home", Kind: KindDefault, State: StateActive},
		{Label: "Entertainment", Color: "bg-red-600", Icon: "Gamepad2", Kind: KindDefault, State: StateActive},
		{Label: "Healthcare", Color: "bg-red-400", Icon: "Heart", Kind: KindDefault, State: StateActive},
		{Label: "Other", Color: "bg-slate-500", Icon: "MoreHorizontal", Kind: KindDefault, State: StateActive},
	}
}
