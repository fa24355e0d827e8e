// Package insights aggregates expenses into the figures shown on the dashboard. Every function
// is pure: the same input always produces the same output and nothing is cached between calls.
package insights

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/period"
)

const (
	dailyKey   = "2006-01-02"
	monthlyKey = "2006-01"
)

type Bucket struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
	Icon  string          `json:"icon"`
}

type Periods struct {
	Today     decimal.Decimal `json:"today"`
	ThisWeek  decimal.Decimal `json:"this_week"`
	ThisMonth decimal.Decimal `json:"this_month"`
}

type Stats struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	Max     decimal.Decimal `json:"max"`
}

// FilterByRange keeps the records with start <= OccurredOn <= end, preserving order.
func FilterByRange(records []*expense.Expense, start, end time.Time) []*expense.Expense {
	out := make([]*expense.Expense, 0, len(records))

	for _, r := range records {
		if period.Within(r.OccurredOn, start, end) {
			out = append(out, r)
		}
	}

	return out
}

// BucketSeries returns one zero-seeded bucket per calendar unit of w, oldest first, with the
// amounts of the records inside w added in. Records outside w are ignored.
func BucketSeries(records []*expense.Expense, w Window) []Bucket {
	buckets := make([]Bucket, 0)
	if w.Empty() {
		return buckets
	}

	keyLayout := keyLayoutFor(w.Granularity)
	index := make(map[string]int)

	for _, start := range units(w) {
		index[start.Format(keyLayout)] = len(buckets)
		buckets = append(buckets, Bucket{
			Key:   start.Format(keyLayout),
			Label: label(start, w),
			Total: decimal.Zero,
		})
	}

	loc := w.Start.Location()

	for _, r := range records {
		if !w.Contains(r.OccurredOn) {
			continue
		}

		i, ok := index[r.OccurredOn.In(loc).Format(keyLayout)]
		if !ok {
			continue
		}

		buckets[i].Total = buckets[i].Total.Add(r.Amount)
	}

	return buckets
}

// units returns the first instant of every calendar unit touched by w.
func units(w Window) []time.Time {
	var out []time.Time

	if w.Granularity == period.Monthly {
		for t := period.StartOfMonth(w.Start); !t.After(w.End); t = t.AddDate(0, 1, 0) {
			out = append(out, t)
		}

		return out
	}

	for t := period.StartOfDay(w.Start); !t.After(w.End); t = period.StartOfDay(t.AddDate(0, 0, 1)) {
		out = append(out, t)
	}

	return out
}

func keyLayoutFor(g period.Granularity) string {
	if g == period.Monthly {
		return monthlyKey
	}

	return dailyKey
}

func label(t time.Time, w Window) string {
	switch {
	case w.Granularity == period.Monthly:
		return t.Format("Jan 06")
	case w.Preset == Preset7D:
		return t.Format("Mon")
	default:
		return t.Format("2 Jan")
	}
}

// CategoryTotals groups records by category label, sorted by total descending. Ties keep the
// order in which the category was first seen.
func CategoryTotals(records []*expense.Expense, categories []*category.Category) []CategoryTotal {
	lookup := resolver(categories)

	totals := make([]CategoryTotal, 0)
	index := make(map[string]int)

	for _, r := range records {
		name := r.CategoryLabel()

		i, ok := index[name]
		if !ok {
			i = len(totals)
			index[name] = i

			color, icon := category.NeutralColor, category.FallbackIcon
			if c, found := lookup[name]; found {
				color, icon = c.Color, category.ResolveIcon(c.Icon)
			}

			totals = append(totals, CategoryTotal{Name: name, Total: decimal.Zero, Color: color, Icon: icon})
		}

		totals[i].Total = totals[i].Total.Add(r.Amount)
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})

	return totals
}

// resolver maps labels to categories, preferring an active category over an archived one.
func resolver(categories []*category.Category) map[string]*category.Category {
	lookup := make(map[string]*category.Category, len(categories))

	for _, c := range categories {
		if existing, ok := lookup[c.Label]; ok && existing.Active() {
			continue
		}

		lookup[c.Label] = c
	}

	return lookup
}

// PeriodTotals sums today, this week and this month as seen from now, in now's location.
func PeriodTotals(records []*expense.Expense, now time.Time) Periods {
	totals := Periods{Today: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero}

	weekStart := period.StartOfWeek(now)
	weekEnd := period.EndOfPeriod(weekStart, period.Weekly)
	year, month, _ := now.Date()

	for _, r := range records {
		t := r.OccurredOn.In(now.Location())

		if period.SameDay(now, t) {
			totals.Today = totals.Today.Add(r.Amount)
		}

		if period.Within(t, weekStart, weekEnd) {
			totals.ThisWeek = totals.ThisWeek.Add(r.Amount)
		}

		if y, m, _ := t.Date(); y == year && m == month {
			totals.ThisMonth = totals.ThisMonth.Add(r.Amount)
		}
	}

	return totals
}

func SummaryStats(records []*expense.Expense) Stats {
	stats := Stats{Total: decimal.Zero, Average: decimal.Zero, Max: decimal.Zero}

	for _, r := range records {
		stats.Count++
		stats.Total = stats.Total.Add(r.Amount)

		if r.Amount.GreaterThan(stats.Max) {
			stats.Max = r.Amount
		}
	}

	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count)))
	}

	return stats
}
