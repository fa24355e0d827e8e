package insights

import (
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
)

// Dashboard is everything the insights screen shows for one range.
type Dashboard struct {
	Window     Window          `json:"window"`
	Stats      Stats           `json:"stats"`
	Series     []Bucket        `json:"series"`
	Categories []CategoryTotal `json:"categories"`
	Periods    Periods         `json:"periods"`
	AllTime    Stats           `json:"all_time"`
}

// Build resolves r against now and aggregates records for it. Period totals and AllTime ignore
// the range.
func Build(records []*expense.Expense, categories []*category.Category, r Range, now time.Time) Dashboard {
	w := r.Resolve(now)
	filtered := FilterByRange(records, w.Start, w.End)

	return Dashboard{
		Window:     w,
		Stats:      SummaryStats(filtered),
		Series:     BucketSeries(filtered, w),
		Categories: CategoryTotals(filtered, categories),
		Periods:    PeriodTotals(records, now),
		AllTime:    SummaryStats(records),
	}
}
