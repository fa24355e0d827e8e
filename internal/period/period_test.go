package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/spendly/internal/period"
)

func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestStartOfDay(t *testing.T) {
	got := period.StartOfDay(date(2024, time.March, 15, 17, 42))

	assert.Equal(t, date(2024, time.March, 15, 0, 0), got)
}

func TestStartOfDay_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	in := time.Date(2024, time.March, 15, 1, 0, 0, 0, loc)

	got := period.StartOfDay(in)

	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestStartOfWeek(t *testing.T) {
	type testCase struct {
		name string
		in   time.Time
		want time.Time
	}

	tests := []testCase{
		{name: "Monday", in: date(2024, time.March, 11, 9, 0), want: date(2024, time.March, 11, 0, 0)},
		{name: "Wednesday", in: date(2024, time.March, 13, 9, 0), want: date(2024, time.March, 11, 0, 0)},
		{name: "Sunday goes back six days", in: date(2024, time.March, 17, 23, 59), want: date(2024, time.March, 11, 0, 0)},
		{name: "Across month boundary", in: date(2024, time.March, 2, 12, 0), want: date(2024, time.February, 26, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.StartOfWeek(tt.in))
		})
	}
}

func TestStartOfMonthAndYear(t *testing.T) {
	in := date(2024, time.August, 19, 8, 30)

	assert.Equal(t, date(2024, time.August, 1, 0, 0), period.StartOfMonth(in))
	assert.Equal(t, date(2024, time.January, 1, 0, 0), period.StartOfYear(in))
}

func TestEndOfPeriod(t *testing.T) {
	type testCase struct {
		name  string
		start time.Time
		g     period.Granularity
		want  time.Time
	}

	tests := []testCase{
		{
			name:  "Daily",
			start: date(2024, time.March, 15, 0, 0),
			g:     period.Daily,
			want:  time.Date(2024, time.March, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:  "Weekly",
			start: date(2024, time.March, 11, 0, 0),
			g:     period.Weekly,
			want:  time.Date(2024, time.March, 17, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:  "Monthly leap February",
			start: date(2024, time.February, 1, 0, 0),
			g:     period.Monthly,
			want:  time.Date(2024, time.February, 29, 23, 59, 59, 999999999, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.EndOfPeriod(tt.start, tt.g))
		})
	}
}

func TestAddMonths(t *testing.T) {
	type testCase struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}

	tests := []testCase{
		{name: "Plain", in: date(2024, time.May, 10, 14, 0), n: -1, want: date(2024, time.April, 10, 14, 0)},
		{name: "Leap day minus a year", in: date(2024, time.February, 29, 8, 0), n: -12, want: date(2023, time.February, 28, 8, 0)},
		{name: "Month end clamps", in: date(2024, time.March, 31, 0, 0), n: -1, want: date(2024, time.February, 29, 0, 0)},
		{name: "Across year", in: date(2024, time.January, 15, 0, 0), n: -3, want: date(2023, time.October, 15, 0, 0)},
		{name: "Forward", in: date(2023, time.January, 31, 0, 0), n: 1, want: date(2023, time.February, 28, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.AddMonths(tt.in, tt.n))
		})
	}
}

func TestSameDayAndWithin(t *testing.T) {
	start := date(2024, time.March, 15, 0, 0)
	end := period.EndOfDay(start)

	assert.True(t, period.SameDay(start, end))
	assert.False(t, period.SameDay(start, end.Add(time.Nanosecond)))

	assert.True(t, period.Within(start, start, end))
	assert.True(t, period.Within(end, start, end))
	assert.False(t, period.Within(start.Add(-time.Nanosecond), start, end))
	assert.False(t, period.Within(end.Add(time.Nanosecond), start, end))
}

func TestGranularityString(t *testing.T) {
	assert.Equal(t, "daily", period.Daily.String())
	assert.Equal(t, "weekly", period.Weekly.String())
	assert.Equal(t, "monthly", period.Monthly.String())
}
