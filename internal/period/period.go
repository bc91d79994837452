// Package period maps report period tokens onto concrete date windows.
//
// The "year" token deliberately carries two semantics in different report
// contexts: category and income/expense reports use the calendar year to
// date, cash-flow style contexts use a rolling trailing year. The two are
// kept apart as distinct Period values with separate parse entry points so
// neither can silently absorb the other.
package period

import (
	"time"

	"finbook/internal/core"
)

// Period is a resolved period kind. The external tokens are the lowercase
// strings day/week/month/quarter/year/all; YearRolling is only reachable
// through ParseRolling.
type Period string

const (
	Day     Period = "day"
	Week    Period = "week"
	Month   Period = "month"
	Quarter Period = "quarter"
	// Year is the calendar semantics of the "year" token: Jan 1 of the
	// current year through today.
	Year Period = "year"
	// YearRolling is the cash-flow semantics of the "year" token: the
	// trailing year ending today.
	YearRolling Period = "year-rolling"
	All         Period = "all"
)

// Window is an inclusive date range. An unbounded window (the "all" period)
// has Unbounded set and zero Start/End; it must never reach the occurrence
// calculator or the daily series generator.
type Window struct {
	Start     core.Date
	End       core.Date
	Unbounded bool
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d core.Date) bool {
	if w.Unbounded {
		return true
	}
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Parse maps an external period token to a Period, resolving "year" to the
// calendar year-to-date semantics.
func Parse(token string) (Period, error) {
	switch Period(token) {
	case Day, Week, Month, Quarter, Year, All:
		return Period(token), nil
	}
	return "", core.ErrInvalidPeriod
}

// ParseRolling is Parse for cash-flow contexts: "year" resolves to the
// rolling trailing-year semantics instead of the calendar year.
func ParseRolling(token string) (Period, error) {
	p, err := Parse(token)
	if err != nil {
		return "", err
	}
	if p == Year {
		return YearRolling, nil
	}
	return p, nil
}

// Resolve turns a period into a concrete window ending at now's calendar
// date. Both endpoints are inclusive.
func Resolve(p Period, now time.Time) (Window, error) {
	today := core.Midnight(now)
	switch p {
	case Day:
		return Window{Start: today, End: today}, nil
	case Week:
		return Window{Start: core.Midnight(today.AddDate(0, 0, -7)), End: today}, nil
	case Month:
		return Window{Start: core.NewDate(today.Year(), int(today.Month()), 1), End: today}, nil
	case Quarter:
		return Window{Start: core.Midnight(today.AddDate(0, -3, 0)), End: today}, nil
	case Year:
		return Window{Start: core.NewDate(today.Year(), 1, 1), End: today}, nil
	case YearRolling:
		return Window{Start: core.Midnight(today.AddDate(-1, 0, 0)), End: today}, nil
	case All:
		return Window{Unbounded: true}, nil
	}
	return Window{}, core.ErrInvalidPeriod
}

// Days returns the fixed day-count length used for budget normalization.
// These are deliberate calendar approximations (month=30, year=365), kept as
// a contract rather than replaced with calendar-accurate lengths. The
// unbounded "all" period scales to the year horizon.
func Days(p Period) (int, error) {
	switch p {
	case Day:
		return 1, nil
	case Week:
		return 7, nil
	case Month:
		return 30, nil
	case Quarter:
		return 90, nil
	case Year, YearRolling, All:
		return 365, nil
	}
	return 0, core.ErrInvalidPeriod
}
