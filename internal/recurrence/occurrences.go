// Package recurrence enumerates the concrete occurrence dates of recurring
// definitions and generates the dense daily series used by cash-flow reports.
//
// All functions are pure: the same inputs always yield the same ordered
// dates, and enumerating two adjacent windows yields exactly the same set as
// enumerating the merged window.
package recurrence

import (
	"time"

	"finbook/internal/core"
)

// OccurrencesInWindow returns the ascending occurrence dates of def inside
// [start, end], both endpoints inclusive. The effective window is the
// intersection with def's own start/end dates. The caller filters on
// IsActive before calling.
//
// A reversed window fails fast with ErrInvalidPeriod rather than looping.
func OccurrencesInWindow(def core.RecurringDefinition, start, end core.Date) ([]core.Date, error) {
	if !start.IsSet() || !end.IsSet() || end.Before(start.Time) {
		return nil, core.ErrInvalidPeriod
	}

	effStart := start
	if def.StartDate.After(effStart.Time) {
		effStart = def.StartDate
	}
	effEnd := end
	if def.EndDate.IsSet() && def.EndDate.Before(effEnd.Time) {
		effEnd = def.EndDate
	}
	if effEnd.Before(effStart.Time) {
		return nil, nil
	}

	switch def.Frequency {
	case core.Daily:
		return dailyOccurrences(effStart, effEnd), nil
	case core.Weekly:
		return weeklyOccurrences(def.StartDate, effStart, effEnd), nil
	case core.Monthly:
		return monthlyOccurrences(def.StartDate, effStart, effEnd), nil
	case core.Yearly:
		return yearlyOccurrences(def.StartDate, effStart, effEnd), nil
	}
	return nil, core.ErrInvalidFrequency
}

// DailySeries returns every date in [start, end] inclusive. It replaces the
// recursive-CTE date generation of query-based designs with an explicit,
// testable iterator.
func DailySeries(start, end core.Date) ([]core.Date, error) {
	if !start.IsSet() || !end.IsSet() || end.Before(start.Time) {
		return nil, core.ErrInvalidPeriod
	}
	return dailyOccurrences(start, end), nil
}

func dailyOccurrences(start, end core.Date) []core.Date {
	var out []core.Date
	for d := start; !d.After(end.Time); d = (core.Date{Time: d.AddDate(0, 0, 1)}) {
		out = append(out, d)
	}
	return out
}

func weeklyOccurrences(anchor, start, end core.Date) []core.Date {
	// Advance to the first date in the window on the anchor's weekday.
	first := start
	for first.Weekday() != anchor.Weekday() {
		first = core.Date{Time: first.AddDate(0, 0, 1)}
	}
	var out []core.Date
	for d := first; !d.After(end.Time); d = (core.Date{Time: d.AddDate(0, 0, 7)}) {
		out = append(out, d)
	}
	return out
}

func monthlyOccurrences(anchor, start, end core.Date) []core.Date {
	targetDay := anchor.Day()
	var out []core.Date
	for y, m := start.Year(), int(start.Month()); ; {
		d := clampToMonth(y, m, targetDay)
		if d.After(end.Time) {
			break
		}
		if !d.Before(start.Time) {
			out = append(out, d)
		}
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return out
}

func yearlyOccurrences(anchor, start, end core.Date) []core.Date {
	targetMonth := int(anchor.Month())
	targetDay := anchor.Day()
	var out []core.Date
	for y := start.Year(); ; y++ {
		d := clampToMonth(y, targetMonth, targetDay)
		if d.After(end.Time) {
			break
		}
		if !d.Before(start.Time) {
			out = append(out, d)
		}
	}
	return out
}

// clampToMonth returns the date (year, month, day) with the day clamped to
// the month's last day, so day 31 lands on Apr 30 and Feb-29 anniversaries
// land on Feb 28 off leap years.
func clampToMonth(year, month, day int) core.Date {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(year, month, day)
}
