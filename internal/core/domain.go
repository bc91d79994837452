package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

type (
	// Frequency is the cadence of a recurring definition or a category budget.
	Frequency string

	// EntryType classifies transactions, recurring definitions and categories
	// as money coming in or going out.
	EntryType string

	// Date is a calendar date normalized to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	Account struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Balance Money  `json:"balance"`
	}

	// Category optionally carries a budget: BudgetAmount and BudgetFrequency
	// are set together or not at all. A category without both is excluded
	// from budget reporting.
	Category struct {
		ID              int64     `json:"id"`
		Name            string    `json:"name"`
		Type            EntryType `json:"type"`
		BudgetAmount    Money     `json:"budget_amount"`
		BudgetFrequency Frequency `json:"budget_frequency,omitempty"`
	}

	// Transaction is a single recorded cash event. Transfer legs come in
	// linked pairs: IsTransfer set and TransferPairID pointing at the other
	// leg, which points back. Pairs are created and deleted as a unit.
	Transaction struct {
		ID             int64     `json:"id"`
		AccountID      int64     `json:"account_id"`
		CategoryID     *int64    `json:"category_id"`
		Type           EntryType `json:"type"`
		Amount         Money     `json:"amount"`
		Date           Date      `json:"date"`
		Description    string    `json:"description"`
		IsTransfer     bool      `json:"is_transfer"`
		TransferPairID *int64    `json:"transfer_pair_id"`
	}

	// RecurringDefinition describes a repeating cash event. Occurrence dates
	// are never persisted; they are derived on demand from the start/end
	// dates and frequency. Soft-disable via IsActive is the normal deletion
	// path so historical projections stay reproducible.
	RecurringDefinition struct {
		ID         int64     `json:"id"`
		AccountID  int64     `json:"account_id"`
		CategoryID *int64    `json:"category_id"`
		Name       string    `json:"name"`
		Type       EntryType `json:"type"`
		Amount     Money     `json:"amount"`
		StartDate  Date      `json:"start_date"`
		EndDate    Date      `json:"end_date"` // zero when open-ended, inclusive otherwise
		Frequency  Frequency `json:"frequency"`
		IsActive   bool      `json:"is_active"`
	}
)

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyFilter      = errors.New("empty account filter")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Midnight truncates t to its UTC calendar date.
func Midnight(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Midnight(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// IsSet reports whether the date carries a value. Optional dates (recurring
// end dates) use the zero time as "not set".
func (d Date) IsSet() bool {
	return !d.IsZero()
}

// YearMonth returns the date's "YYYY-MM" grouping key.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidFrequency
}

func (t EntryType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// HasBudget reports whether the category participates in budget reporting.
// Both the amount and the frequency must be set.
func (c Category) HasBudget() bool {
	return c.BudgetAmount.Cents > 0 && c.BudgetFrequency.Validate() == nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (rd RecurringDefinition) Validate() error {
	if len(strings.TrimSpace(rd.Name)) == 0 {
		return ErrEmptyName
	}
	if err := rd.Type.Validate(); err != nil {
		return err
	}
	if err := rd.Amount.Validate(); err != nil {
		return err
	}
	if err := rd.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if rd.EndDate.IsSet() && rd.EndDate.Before(rd.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	return rd.Frequency.Validate()
}

// AccountFilter selects the accounts an operation runs over: either every
// account or an explicit non-empty id set.
type AccountFilter struct {
	all bool
	ids []int64
}

// AllAccounts returns the filter matching every account.
func AllAccounts() AccountFilter {
	return AccountFilter{all: true}
}

// Accounts returns a filter over an explicit id set. Repeated ids collapse
// to one, keeping first-seen order.
func Accounts(ids ...int64) AccountFilter {
	seen := make(map[int64]struct{}, len(ids))
	distinct := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return AccountFilter{ids: distinct}
}

func (f AccountFilter) Validate() error {
	if !f.all && len(f.ids) == 0 {
		return ErrEmptyFilter
	}
	return nil
}

func (f AccountFilter) All() bool {
	return f.all
}

func (f AccountFilter) IDs() []int64 {
	return f.ids
}

func (f AccountFilter) Includes(id int64) bool {
	if f.all {
		return true
	}
	for _, v := range f.ids {
		if v == id {
			return true
		}
	}
	return false
}
