package reports

import (
	"context"
	"testing"

	"finbook/internal/core"
)

func recurring(name string, typ core.EntryType, freq core.Frequency, start core.Date, active bool) core.RecurringDefinition {
	return core.RecurringDefinition{
		AccountID: 1,
		Name:      name,
		Type:      typ,
		Amount:    core.Money{Cents: 1000},
		StartDate: start,
		Frequency: freq,
		IsActive:  active,
	}
}

func TestUpcomingPayments(t *testing.T) {
	// Window is [2024-03-15, 2024-03-19]; 2024-03-15 is a Friday.
	today := core.NewDate(2024, 3, 15)

	tests := []struct {
		name string
		defs []core.RecurringDefinition
		want int
	}{
		{
			name: "weekly pattern due once inside the window",
			defs: []core.RecurringDefinition{
				// Anchored on a Monday; next Monday is the 18th.
				recurring("gym", core.Expense, core.Weekly, core.NewDate(2024, 1, 1), true),
			},
			want: 1,
		},
		{
			name: "monthly pattern outside the window",
			defs: []core.RecurringDefinition{
				recurring("rent", core.Expense, core.Monthly, core.NewDate(2023, 6, 1), true),
			},
			want: 0,
		},
		{
			name: "monthly pattern landing inside the window",
			defs: []core.RecurringDefinition{
				recurring("insurance", core.Expense, core.Monthly, core.NewDate(2023, 6, 17), true),
			},
			want: 1,
		},
		{
			name: "start date inside the window is due regardless of pattern",
			defs: []core.RecurringDefinition{
				recurring("new sub", core.Expense, core.Yearly, core.NewDate(2024, 3, 19), true),
			},
			want: 1,
		},
		{
			name: "start date after the window",
			defs: []core.RecurringDefinition{
				recurring("future", core.Expense, core.Daily, core.NewDate(2024, 3, 20), true),
			},
			want: 0,
		},
		{
			name: "inactive definitions are skipped",
			defs: []core.RecurringDefinition{
				recurring("cancelled", core.Expense, core.Daily, core.NewDate(2024, 1, 1), false),
			},
			want: 0,
		},
		{
			name: "income definitions are skipped",
			defs: []core.RecurringDefinition{
				recurring("salary", core.Income, core.Monthly, core.NewDate(2023, 1, 17), true),
			},
			want: 0,
		},
		{
			name: "ended definitions are skipped",
			defs: []core.RecurringDefinition{
				func() core.RecurringDefinition {
					rd := recurring("old lease", core.Expense, core.Monthly, core.NewDate(2022, 3, 16), true)
					rd.EndDate = core.NewDate(2024, 2, 29)
					return rd
				}(),
			},
			want: 0,
		},
		{
			name: "daily pattern is always due",
			defs: []core.RecurringDefinition{
				recurring("coffee", core.Expense, core.Daily, core.NewDate(2024, 1, 1), true),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngineAt(&fakeRepo{recurring: tt.defs}, fixedNow)
			got, err := e.UpcomingPayments(context.Background(), core.AllAccounts(), today)
			if err != nil {
				t.Fatalf("UpcomingPayments: %v", err)
			}
			if got.Count != tt.want {
				t.Errorf("Count = %d, want %d", got.Count, tt.want)
			}
			if got.WindowStart != "2024-03-15" || got.WindowEnd != "2024-03-19" {
				t.Errorf("window = [%s, %s], want [2024-03-15, 2024-03-19]", got.WindowStart, got.WindowEnd)
			}
		})
	}
}

func TestUpcomingPaymentsZeroTodayUsesEngineClock(t *testing.T) {
	defs := []core.RecurringDefinition{
		// Anchored on a Monday; next Monday is the 18th, inside the window.
		recurring("gym", core.Expense, core.Weekly, core.NewDate(2024, 1, 1), true),
	}
	e := NewEngineAt(&fakeRepo{recurring: defs}, fixedNow)

	got, err := e.UpcomingPayments(context.Background(), core.AllAccounts(), core.Date{})
	if err != nil {
		t.Fatalf("UpcomingPayments: %v", err)
	}
	if got.WindowStart != "2024-03-15" || got.WindowEnd != "2024-03-19" {
		t.Errorf("window = [%s, %s], want [2024-03-15, 2024-03-19]", got.WindowStart, got.WindowEnd)
	}
	if got.Count != 1 {
		t.Errorf("Count = %d, want 1", got.Count)
	}
}
