package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finbook/internal/core"
	"finbook/internal/period"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedAccount(t *testing.T, repo *SQLiteRepository, name string, cents int64) int64 {
	t.Helper()
	id, err := repo.CreateAccount(context.Background(), core.Account{Name: name, Balance: core.Money{Cents: cents}})
	if err != nil {
		t.Fatalf("CreateAccount(%q): %v", name, err)
	}
	return id
}

func TestAccountsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1 := seedAccount(t, repo, "checking", 120000)
	id2 := seedAccount(t, repo, "savings", 500000)

	all, err := repo.Accounts(ctx, core.AllAccounts())
	if err != nil {
		t.Fatalf("Accounts(all): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d accounts, want 2", len(all))
	}
	if all[0].Name != "checking" || all[0].Balance.Cents != 120000 {
		t.Errorf("first account = %+v", all[0])
	}

	one, err := repo.Accounts(ctx, core.Accounts(id2))
	if err != nil {
		t.Fatalf("Accounts(id2): %v", err)
	}
	if len(one) != 1 || one[0].ID != id2 {
		t.Errorf("filtered accounts = %+v", one)
	}

	if _, err := repo.Accounts(ctx, core.Accounts(id1, 999)); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing account id should yield ErrNotFound, got %v", err)
	}

	// A repeated id is still one account, not a missing one.
	same, err := repo.Accounts(ctx, core.Accounts(id1, id1))
	if err != nil {
		t.Fatalf("Accounts(id1, id1): %v", err)
	}
	if len(same) != 1 || same[0].ID != id1 {
		t.Errorf("deduplicated filter = %+v", same)
	}
}

func TestCategoriesBudgetPersistence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateCategory(ctx, core.Category{
		Name: "Food", Type: core.Expense,
		BudgetAmount: core.Money{Cents: 30000}, BudgetFrequency: core.Monthly,
	}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{Name: "Misc", Type: core.Expense}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	cats, err := repo.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	// Ordered by name: Food before Misc.
	if !cats[0].HasBudget() || cats[0].BudgetAmount.Cents != 30000 || cats[0].BudgetFrequency != core.Monthly {
		t.Errorf("budget not persisted: %+v", cats[0])
	}
	if cats[1].HasBudget() {
		t.Errorf("budgetless category came back with a budget: %+v", cats[1])
	}
}

func TestTransactionsWindowFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "checking", 0)
	for _, day := range []int{10, 15, 20} {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			AccountID: acc,
			Type:      core.Expense,
			Amount:    core.Money{Cents: 1000},
			Date:      core.NewDate(2024, 3, day),
		}); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	win := period.Window{Start: core.NewDate(2024, 3, 15), End: core.NewDate(2024, 3, 20)}
	txns, err := repo.Transactions(ctx, core.AllAccounts(), win)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2 (endpoints inclusive)", len(txns))
	}
	if txns[0].Date.Day() != 15 || txns[1].Date.Day() != 20 {
		t.Errorf("wrong rows: %+v", txns)
	}

	all, err := repo.Transactions(ctx, core.AllAccounts(), period.Window{Unbounded: true})
	if err != nil {
		t.Fatalf("Transactions(unbounded): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unbounded window returned %d rows, want 3", len(all))
	}
}

func TestCreateTransactionValidates(t *testing.T) {
	repo := newTestRepo(t)
	acc := seedAccount(t, repo, "checking", 0)

	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		AccountID: acc,
		Type:      core.EntryType("transfer"),
		Amount:    core.Money{Cents: 1000},
		Date:      core.NewDate(2024, 3, 1),
	})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransferPairLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	from := seedAccount(t, repo, "checking", 100000)
	to := seedAccount(t, repo, "savings", 0)

	fromID, toID, err := repo.CreateTransferPair(ctx, from, to, core.Money{Cents: 25000}, core.NewDate(2024, 3, 10), "monthly sweep")
	if err != nil {
		t.Fatalf("CreateTransferPair: %v", err)
	}

	txns, err := repo.Transactions(ctx, core.AllAccounts(), period.Window{Unbounded: true})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d legs, want 2", len(txns))
	}
	for _, leg := range txns {
		if !leg.IsTransfer {
			t.Errorf("leg %d not marked as transfer", leg.ID)
		}
		if leg.TransferPairID == nil {
			t.Fatalf("leg %d missing pair link", leg.ID)
		}
	}
	if *txns[0].TransferPairID != txns[1].ID || *txns[1].TransferPairID != txns[0].ID {
		t.Errorf("pair links not symmetric: %+v", txns)
	}
	if txns[0].Type != core.Expense || txns[1].Type != core.Income {
		t.Errorf("leg types wrong: %q, %q", txns[0].Type, txns[1].Type)
	}

	// Deleting either leg removes both.
	if err := repo.DeleteTransaction(ctx, fromID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	txns, err = repo.Transactions(ctx, core.AllAccounts(), period.Window{Unbounded: true})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("pair survived half-deleted: %+v", txns)
	}

	if err := repo.DeleteTransaction(ctx, toID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleting the removed partner should yield ErrNotFound, got %v", err)
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.DeleteTransaction(context.Background(), 12345); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecurringRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "checking", 0)

	open := core.RecurringDefinition{
		AccountID: acc,
		Name:      "rent",
		Type:      core.Expense,
		Amount:    core.Money{Cents: 95000},
		StartDate: core.NewDate(2024, 1, 31),
		Frequency: core.Monthly,
	}
	openID, err := repo.CreateRecurring(ctx, open)
	if err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}

	bounded := open
	bounded.Name = "lease"
	bounded.EndDate = core.NewDate(2024, 12, 31)
	if _, err := repo.CreateRecurring(ctx, bounded); err != nil {
		t.Fatalf("CreateRecurring(bounded): %v", err)
	}

	defs, err := repo.Recurring(ctx, core.AllAccounts())
	if err != nil {
		t.Fatalf("Recurring: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].EndDate.IsSet() {
		t.Errorf("open-ended definition came back with an end date: %v", defs[0].EndDate)
	}
	if !defs[1].EndDate.IsSet() || defs[1].EndDate.Day() != 31 {
		t.Errorf("bounded end date lost: %+v", defs[1])
	}
	if !defs[0].IsActive || !defs[1].IsActive {
		t.Error("new definitions should be active")
	}

	if err := repo.DisableRecurring(ctx, openID); err != nil {
		t.Fatalf("DisableRecurring: %v", err)
	}
	defs, err = repo.Recurring(ctx, core.AllAccounts())
	if err != nil {
		t.Fatalf("Recurring: %v", err)
	}
	if defs[0].IsActive {
		t.Error("disabled definition still active")
	}
	if len(defs) != 2 {
		t.Errorf("soft-disable should not remove rows, got %d", len(defs))
	}

	if err := repo.DisableRecurring(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecurringAccountFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc1 := seedAccount(t, repo, "a", 0)
	acc2 := seedAccount(t, repo, "b", 0)

	for _, acc := range []int64{acc1, acc2} {
		if _, err := repo.CreateRecurring(ctx, core.RecurringDefinition{
			AccountID: acc,
			Name:      "sub",
			Type:      core.Expense,
			Amount:    core.Money{Cents: 1000},
			StartDate: core.NewDate(2024, 1, 1),
			Frequency: core.Monthly,
		}); err != nil {
			t.Fatalf("CreateRecurring: %v", err)
		}
	}

	defs, err := repo.Recurring(ctx, core.Accounts(acc2))
	if err != nil {
		t.Fatalf("Recurring: %v", err)
	}
	if len(defs) != 1 || defs[0].AccountID != acc2 {
		t.Errorf("account filter not applied: %+v", defs)
	}
}
