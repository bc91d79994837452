package reports

import "finbook/internal/core"

// MonthFlow is one (year-month, type) bucket of recorded transactions.
type MonthFlow struct {
	Month string         `json:"month"` // "2006-01"
	Type  core.EntryType `json:"type"`
	Total core.Money     `json:"total"`
}

// CategorySpend is an expense total for one category name. Count is the
// number of rows that contributed: recorded transactions plus recurring
// definitions counted as recognized commitments.
type CategorySpend struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
	Count    int        `json:"count"`
}

// CashFlowPoint is one day of the dense cash-flow series. Running is the
// cumulative net from the first day of the series. It starts at zero, not
// from account balances.
type CashFlowPoint struct {
	Date    string     `json:"date"` // "2006-01-02"
	Net     core.Money `json:"net_amount"`
	Running core.Money `json:"running_balance"`
}

// BudgetProgressRow compares a category's period-adjusted budget with what
// was spent against it.
type BudgetProgressRow struct {
	CategoryID int64          `json:"category_id"`
	Category   string         `json:"category"`
	Frequency  core.Frequency `json:"budget_frequency"`
	Budget     core.Money     `json:"adjusted_budget"`
	Spent      core.Money     `json:"spent"`
}

// Comparison holds the current versus previous calendar month expense
// totals. Trend is "higher" when PercentChange >= 0 and "lower" otherwise;
// a zero previous month always yields PercentChange 0.
type Comparison struct {
	ThisMonth     core.Money `json:"this_month"`
	LastMonth     core.Money `json:"last_month"`
	PercentChange float64    `json:"percent_change"`
	Trend         string     `json:"trend"`
}

// NetWorthReport is the sum of the filtered account balances.
type NetWorthReport struct {
	Total    core.Money `json:"total"`
	Accounts int        `json:"accounts"`
}

// UpcomingReport counts active expense recurring definitions due inside the
// fixed 5-day forward window.
type UpcomingReport struct {
	Count       int    `json:"count"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}
