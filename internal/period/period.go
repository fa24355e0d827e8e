// Package period computes calendar boundaries in the location of the instant passed in.
// Weeks start on Monday. Boundaries are true midnights, so ranges compare with >= start and <= end.
package period

import (
	"time"

	"github.com/jinzhu/now"
)

// Granularity is the size of a calendar bucket.
type Granularity int

const (
	Daily Granularity = iota
	Weekly
	Monthly
)

func (g Granularity) String() string {
	switch g {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return "unknown"
	}
}

func (g Granularity) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

var calendar = &now.Config{WeekStartDay: time.Monday}

func StartOfDay(t time.Time) time.Time {
	return calendar.With(t).BeginningOfDay()
}

// StartOfWeek returns the Monday of t's week. A Sunday belongs to the week that began six days earlier.
func StartOfWeek(t time.Time) time.Time {
	return calendar.With(t).BeginningOfWeek()
}

func StartOfMonth(t time.Time) time.Time {
	return calendar.With(t).BeginningOfMonth()
}

func StartOfYear(t time.Time) time.Time {
	return calendar.With(t).BeginningOfYear()
}

func EndOfDay(t time.Time) time.Time {
	return calendar.With(t).EndOfDay()
}

// EndOfPeriod returns the last instant of the period that starts at start.
func EndOfPeriod(start time.Time, g Granularity) time.Time {
	n := calendar.With(start)

	switch g {
	case Weekly:
		return n.EndOfWeek()
	case Monthly:
		return n.EndOfMonth()
	default:
		return n.EndOfDay()
	}
}

// AddMonths moves t by n calendar months keeping the time of day. The day is clamped to the
// last day of the target month, so Mar 31 - 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	if last := DaysIn(first); d > last {
		d = last
	}

	return first.AddDate(0, 0, d-1)
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return calendar.With(t).EndOfMonth().Day()
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())

	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// Within reports whether start <= t <= end.
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
