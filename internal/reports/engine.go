// Package reports implements the financial aggregation engine: it merges
// recorded transactions with projected recurring occurrences into
// period-bounded report records.
//
// All operations are pure, read-only computations over snapshots fetched
// from the injected Repository; the engine holds no mutable state and is
// safe for concurrent use.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finbook/internal/budget"
	"finbook/internal/core"
	"finbook/internal/period"
	"finbook/internal/recurrence"
)

// Repository is the read-only persistence surface the engine consumes.
// Implementations return point-in-time snapshots; the engine never holds
// long-lived references.
type Repository interface {
	Transactions(ctx context.Context, filter core.AccountFilter, win period.Window) ([]core.Transaction, error)
	Recurring(ctx context.Context, filter core.AccountFilter) ([]core.RecurringDefinition, error)
	Categories(ctx context.Context) ([]core.Category, error)
	Accounts(ctx context.Context, filter core.AccountFilter) ([]core.Account, error)
}

type Engine struct {
	repo Repository
	now  func() time.Time
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// NewEngineAt is NewEngine with an injected clock, for deterministic tests
// and replayed reports.
func NewEngineAt(repo Repository, now func() time.Time) *Engine {
	return &Engine{repo: repo, now: now}
}

// IncomeExpenseByMonth groups recorded transactions by (type, year-month)
// inside the resolved window. Recurring definitions and transfer legs are
// excluded. The "year" token resolves to the calendar year to date.
func (e *Engine) IncomeExpenseByMonth(ctx context.Context, filter core.AccountFilter, p period.Period) ([]MonthFlow, error) {
	txns, err := e.transactionsFor(ctx, filter, p)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, t := range txns {
		if t.IsTransfer {
			continue
		}
		totals[t.Date.YearMonth()+"|"+string(t.Type)] += t.Amount.Cents
	}

	rows := make([]MonthFlow, 0, len(totals))
	for key, cents := range totals {
		month, typ := splitKey(key)
		rows = append(rows, MonthFlow{Month: month, Type: core.EntryType(typ), Total: core.Money{Cents: cents}})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Type < rows[j].Type
	})
	return rows, nil
}

// ExpenseCategories unions recorded expense transactions inside the window
// with every active expense recurring definition regardless of whether an
// occurrence falls inside the window: recurring items are counted as
// recognized commitments, not per-occurrence charges. Totals are grouped by
// category name ("Uncategorized" fallback), filtered to positive values and
// sorted descending.
func (e *Engine) ExpenseCategories(ctx context.Context, filter core.AccountFilter, p period.Period) ([]CategorySpend, error) {
	txns, err := e.transactionsFor(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	recurring, err := e.repo.Recurring(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch recurring: %w", err)
	}
	names, err := e.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		cents int64
		count int
	}
	buckets := make(map[string]*bucket)
	add := func(categoryID *int64, cents int64) {
		name := names.lookup(categoryID)
		b := buckets[name]
		if b == nil {
			b = &bucket{}
			buckets[name] = b
		}
		b.cents += cents
		b.count++
	}

	for _, t := range txns {
		if t.IsTransfer || t.Type != core.Expense {
			continue
		}
		add(t.CategoryID, t.Amount.Cents)
	}
	for _, rd := range recurring {
		if !rd.IsActive || rd.Type != core.Expense {
			continue
		}
		add(rd.CategoryID, rd.Amount.Cents)
	}

	rows := make([]CategorySpend, 0, len(buckets))
	for name, b := range buckets {
		if b.cents <= 0 {
			continue
		}
		rows = append(rows, CategorySpend{Category: name, Total: core.Money{Cents: b.cents}, Count: b.count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// TopSpendingCategories is ExpenseCategories truncated to the limit highest
// totals. A non-positive limit returns the full list.
func (e *Engine) TopSpendingCategories(ctx context.Context, filter core.AccountFilter, p period.Period, limit int) ([]CategorySpend, error) {
	rows, err := e.ExpenseCategories(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// CashFlow builds the dense daily net/running-balance series over a fixed
// trailing calendar month, regardless of any period used elsewhere. Only
// recorded transactions contribute; the running balance accumulates from
// zero on the first day of the series.
func (e *Engine) CashFlow(ctx context.Context, filter core.AccountFilter) ([]CashFlowPoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	today := core.Midnight(e.now())
	start := core.Midnight(today.AddDate(0, -1, 0))
	win := period.Window{Start: start, End: today}

	txns, err := e.repo.Transactions(ctx, filter, win)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	series, err := recurrence.DailySeries(start, today)
	if err != nil {
		return nil, err
	}

	net := make(map[string]int64, len(series))
	for _, t := range txns {
		if t.IsTransfer {
			continue
		}
		key := t.Date.Format("2006-01-02")
		if t.Type == core.Income {
			net[key] += t.Amount.Cents
		} else {
			net[key] -= t.Amount.Cents
		}
	}

	points := make([]CashFlowPoint, len(series))
	var running int64
	for i, d := range series {
		key := d.Format("2006-01-02")
		running += net[key]
		points[i] = CashFlowPoint{Date: key, Net: core.Money{Cents: net[key]}, Running: core.Money{Cents: running}}
	}
	return points, nil
}

// BudgetProgress reports, for every category carrying a budget, the
// period-adjusted budget amount against what was spent. Spent is the sum of
// recorded expense transactions in the window; for every period except "all"
// the full amount of each active expense recurring definition for the
// category is added irrespective of occurrence dates. The "all" period skips
// recurring entirely; the asymmetry is part of the report contract.
func (e *Engine) BudgetProgress(ctx context.Context, filter core.AccountFilter, p period.Period) ([]BudgetProgressRow, error) {
	txns, err := e.transactionsFor(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	categories, err := e.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	var recurring []core.RecurringDefinition
	if p != period.All {
		recurring, err = e.repo.Recurring(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("fetch recurring: %w", err)
		}
	}

	var rows []BudgetProgressRow
	for _, cat := range categories {
		if !cat.HasBudget() {
			continue
		}
		adjusted, err := budget.Adjust(cat.BudgetAmount, cat.BudgetFrequency, p)
		if err != nil {
			return nil, fmt.Errorf("adjust budget for %q: %w", cat.Name, err)
		}
		var spent int64
		for _, t := range txns {
			if t.IsTransfer || t.Type != core.Expense {
				continue
			}
			if t.CategoryID != nil && *t.CategoryID == cat.ID {
				spent += t.Amount.Cents
			}
		}
		for _, rd := range recurring {
			if !rd.IsActive || rd.Type != core.Expense {
				continue
			}
			if rd.CategoryID != nil && *rd.CategoryID == cat.ID {
				spent += rd.Amount.Cents
			}
		}
		rows = append(rows, BudgetProgressRow{
			CategoryID: cat.ID,
			Category:   cat.Name,
			Frequency:  cat.BudgetFrequency,
			Budget:     adjusted,
			Spent:      core.Money{Cents: spent},
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows, nil
}

// MonthlyComparison totals expenses for the current and previous calendar
// months: recorded expense transactions dated in the month, plus each active
// expense recurring definition's amount times its occurrence count actually
// falling inside that month. A zero previous month yields PercentChange 0.
func (e *Engine) MonthlyComparison(ctx context.Context, filter core.AccountFilter) (Comparison, error) {
	if err := filter.Validate(); err != nil {
		return Comparison{}, err
	}
	now := e.now()
	thisWin := monthWindow(now.UTC().Year(), int(now.UTC().Month()))
	// Step back from the first of the month so the 29th-31st cannot
	// overshoot into the same month.
	prev := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	prevWin := monthWindow(prev.Year(), int(prev.Month()))

	recurring, err := e.repo.Recurring(ctx, filter)
	if err != nil {
		return Comparison{}, fmt.Errorf("fetch recurring: %w", err)
	}

	thisTotal, err := e.monthExpense(ctx, filter, thisWin, recurring)
	if err != nil {
		return Comparison{}, err
	}
	lastTotal, err := e.monthExpense(ctx, filter, prevWin, recurring)
	if err != nil {
		return Comparison{}, err
	}

	var pct float64
	if lastTotal != 0 {
		pct = float64(thisTotal-lastTotal) / float64(lastTotal) * 100
	}
	trend := "lower"
	if pct >= 0 {
		trend = "higher"
	}
	return Comparison{
		ThisMonth:     core.Money{Cents: thisTotal},
		LastMonth:     core.Money{Cents: lastTotal},
		PercentChange: pct,
		Trend:         trend,
	}, nil
}

// NetWorth sums the balances of the filtered accounts.
func (e *Engine) NetWorth(ctx context.Context, filter core.AccountFilter) (NetWorthReport, error) {
	if err := filter.Validate(); err != nil {
		return NetWorthReport{}, err
	}
	accounts, err := e.repo.Accounts(ctx, filter)
	if err != nil {
		return NetWorthReport{}, fmt.Errorf("fetch accounts: %w", err)
	}
	var total int64
	for _, a := range accounts {
		total += a.Balance.Cents
	}
	return NetWorthReport{Total: core.Money{Cents: total}, Accounts: len(accounts)}, nil
}

func (e *Engine) monthExpense(ctx context.Context, filter core.AccountFilter, win period.Window, recurring []core.RecurringDefinition) (int64, error) {
	txns, err := e.repo.Transactions(ctx, filter, win)
	if err != nil {
		return 0, fmt.Errorf("fetch transactions: %w", err)
	}
	var total int64
	for _, t := range txns {
		if t.IsTransfer || t.Type != core.Expense {
			continue
		}
		total += t.Amount.Cents
	}
	for _, rd := range recurring {
		if !rd.IsActive || rd.Type != core.Expense {
			continue
		}
		occ, err := recurrence.OccurrencesInWindow(rd, win.Start, win.End)
		if err != nil {
			return 0, fmt.Errorf("occurrences for %q: %w", rd.Name, err)
		}
		total += rd.Amount.Cents * int64(len(occ))
	}
	return total, nil
}

// transactionsFor validates the filter, resolves the period and fetches the
// transaction snapshot in one step shared by the report operations.
func (e *Engine) transactionsFor(ctx context.Context, filter core.AccountFilter, p period.Period) ([]core.Transaction, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	win, err := period.Resolve(p, e.now())
	if err != nil {
		return nil, err
	}
	txns, err := e.repo.Transactions(ctx, filter, win)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txns, nil
}

type categoryIndex map[int64]string

func (e *Engine) categoryNames(ctx context.Context) (categoryIndex, error) {
	categories, err := e.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	idx := make(categoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c.Name
	}
	return idx, nil
}

func (idx categoryIndex) lookup(id *int64) string {
	if id != nil {
		if name, ok := idx[*id]; ok {
			return name
		}
	}
	return "Uncategorized"
}

func monthWindow(year, month int) period.Window {
	first := core.NewDate(year, month, 1)
	last := core.Date{Time: time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)}
	return period.Window{Start: first, End: last}
}

func splitKey(key string) (month, typ string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
