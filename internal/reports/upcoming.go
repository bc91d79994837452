package reports

import (
	"context"
	"fmt"

	"finbook/internal/core"
	"finbook/internal/recurrence"
)

// upcomingWindowDays is the fixed forward-looking horizon for due payments:
// today plus four more days, five days inclusive.
const upcomingWindowDays = 4

// UpcomingPayments counts active expense recurring definitions due inside
// [today, today+4]. A definition counts when its start date falls inside the
// window, or when it has already started, has not ended before today, and at
// least one occurrence of its frequency pattern lands inside the window.
// Only the count is returned, not the matched items. A zero today defaults
// to the engine clock's calendar date.
func (e *Engine) UpcomingPayments(ctx context.Context, filter core.AccountFilter, today core.Date) (UpcomingReport, error) {
	if err := filter.Validate(); err != nil {
		return UpcomingReport{}, err
	}
	if !today.IsSet() {
		today = core.Midnight(e.now())
	}
	end := core.Date{Time: today.AddDate(0, 0, upcomingWindowDays)}

	recurring, err := e.repo.Recurring(ctx, filter)
	if err != nil {
		return UpcomingReport{}, fmt.Errorf("fetch recurring: %w", err)
	}

	count := 0
	for _, rd := range recurring {
		if !rd.IsActive || rd.Type != core.Expense {
			continue
		}
		due, err := isDueInWindow(rd, today, end)
		if err != nil {
			return UpcomingReport{}, fmt.Errorf("check %q: %w", rd.Name, err)
		}
		if due {
			count++
		}
	}
	return UpcomingReport{
		Count:       count,
		WindowStart: today.Format("2006-01-02"),
		WindowEnd:   end.Format("2006-01-02"),
	}, nil
}

func isDueInWindow(rd core.RecurringDefinition, today, end core.Date) (bool, error) {
	// A definition starting inside the window is due regardless of pattern.
	if !rd.StartDate.Before(today.Time) && !rd.StartDate.After(end.Time) {
		return true, nil
	}
	if rd.StartDate.After(today.Time) {
		return false, nil
	}
	if rd.EndDate.IsSet() && rd.EndDate.Before(today.Time) {
		return false, nil
	}
	occ, err := recurrence.OccurrencesInWindow(rd, today, end)
	if err != nil {
		return false, err
	}
	return len(occ) > 0, nil
}
