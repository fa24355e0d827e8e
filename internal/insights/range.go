package insights

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/period"
)

// Preset is a named window relative to now.
type Preset string

const (
	Preset7D Preset = "7d"
	Preset1M Preset = "1m"
	Preset3M Preset = "3m"
	Preset6M Preset = "6m"
	Preset1Y Preset = "1y"
)

// Presets lists the presets in picker order.
var Presets = []Preset{Preset7D, Preset1M, Preset3M, Preset6M, Preset1Y}

func ParsePreset(s string) (Preset, bool) {
	for _, p := range Presets {
		if string(p) == s {
			return p, true
		}
	}

	return "", false
}

func (p Preset) String() string {
	switch p {
	case Preset7D:
		return "Last 7 days"
	case Preset1M:
		return "Last month"
	case Preset3M:
		return "Last 3 months"
	case Preset6M:
		return "Last 6 months"
	case Preset1Y:
		return "Last year"
	}

	return "Custom"
}

const (
	// maxDailySpan is the longest custom range still bucketed by day.
	maxDailySpan = 31

	// MaxCustomMonths bounds a custom range: the retention window plus a year of slack.
	MaxCustomMonths = 24
)

var ErrRangeTooLong = fmt.Errorf("custom range cannot span more than %d months", MaxCustomMonths)

// Range is either a preset or a custom date range. A zero Preset means custom.
type Range struct {
	Preset Preset
	Start  time.Time
	End    time.Time
}

func PresetRange(p Preset) Range {
	return Range{Preset: p}
}

func CustomRange(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

func (r Range) IsCustom() bool {
	return r.Preset == ""
}

// Validate rejects custom ranges whose start lies more than MaxCustomMonths before their end.
func (r Range) Validate() error {
	if !r.IsCustom() {
		return nil
	}

	if period.StartOfDay(r.Start).Before(customFloor(r.End)) {
		return ErrRangeTooLong
	}

	return nil
}

func customFloor(end time.Time) time.Time {
	return period.StartOfDay(period.AddMonths(end, -MaxCustomMonths))
}

// Window is a resolved range. Start is a true midnight and End the last instant of its day.
type Window struct {
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	Granularity period.Granularity `json:"granularity"`
	Preset      Preset             `json:"preset,omitempty"`
}

// Empty reports whether the window covers no time at all, as with an inverted custom range.
func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

func (w Window) Contains(t time.Time) bool {
	return period.Within(t, w.Start, w.End)
}

// Resolve turns r into concrete bounds in now's location.
func (r Range) Resolve(now time.Time) Window {
	if r.IsCustom() {
		start := period.StartOfDay(r.Start)
		end := period.EndOfDay(r.End.In(start.Location()))

		if floor := customFloor(end); start.Before(floor) {
			start = floor
		}

		g := period.Daily
		if calendarDays(start, end) > maxDailySpan {
			g = period.Monthly
		}

		return Window{Start: start, End: end, Granularity: g}
	}

	w := Window{End: period.EndOfDay(now), Granularity: period.Monthly, Preset: r.Preset}

	switch r.Preset {
	case Preset7D:
		w.Start = period.StartOfDay(now.AddDate(0, 0, -6))
		w.Granularity = period.Daily
	case Preset1M:
		w.Start = period.StartOfDay(period.AddMonths(now, -1))
		w.Granularity = period.Daily
	case Preset3M:
		w.Start = period.StartOfDay(period.AddMonths(now, -3))
	case Preset6M:
		w.Start = period.StartOfDay(period.AddMonths(now, -6))
	default:
		w.Start = period.StartOfDay(period.AddMonths(now, -12))
		w.Preset = Preset1Y
	}

	return w
}

// calendarDays counts the dates touched by [start, end], 0 when inverted.
func calendarDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()

	a := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)

	return int(b.Sub(a).Hours()/24) + 1
}
