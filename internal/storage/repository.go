// Package storage persists accounts, categories, transactions and recurring
// definitions in SQLite and serves the read-only snapshots the reporting
// engine consumes.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finbook/internal/core"
	"finbook/internal/period"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// accountClause builds the account filter fragment of a WHERE clause for the
// given column, returning an empty string for the all-accounts filter.
func accountClause(filter core.AccountFilter, column string) (string, []any) {
	if filter.All() {
		return "", nil
	}
	ids := filter.IDs()
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return fmt.Sprintf(" AND %s IN (%s)", column, strings.Join(placeholders, ", ")), args
}

// Transactions implements reports.Repository. An unbounded window returns
// the full history; a bounded one is inclusive on both endpoints.
func (r *SQLiteRepository) Transactions(ctx context.Context, filter core.AccountFilter, win period.Window) ([]core.Transaction, error) {
	query := `SELECT id, account_id, category_id, type, amount_cents, date, description, is_transfer, transfer_pair_id
		FROM transactions WHERE 1=1`
	var args []any

	clause, clauseArgs := accountClause(filter, "account_id")
	query += clause
	args = append(args, clauseArgs...)

	if !win.Unbounded {
		query += " AND date >= ? AND date <= ?"
		args = append(args, win.Start.Format(dateLayout), win.End.Format(dateLayout))
	}
	query += " ORDER BY date, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			date     string
			transfer int64
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount.Cents, &date, &t.Description, &transfer, &t.TransferPairID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		t.IsTransfer = transfer != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// Recurring implements reports.Repository. Inactive definitions are
// returned too; report operations filter on IsActive themselves.
func (r *SQLiteRepository) Recurring(ctx context.Context, filter core.AccountFilter) ([]core.RecurringDefinition, error) {
	query := `SELECT id, account_id, category_id, name, type, amount_cents, start_date, end_date, frequency, is_active
		FROM recurring_definitions WHERE 1=1`
	var args []any

	clause, clauseArgs := accountClause(filter, "account_id")
	query += clause
	args = append(args, clauseArgs...)
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recurring: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringDefinition
	for rows.Next() {
		var (
			rd     core.RecurringDefinition
			start  string
			end    sql.NullString
			active int64
		)
		if err := rows.Scan(&rd.ID, &rd.AccountID, &rd.CategoryID, &rd.Name, &rd.Type, &rd.Amount.Cents, &start, &end, &rd.Frequency, &active); err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		rd.StartDate, err = parseDate(start)
		if err != nil {
			return nil, fmt.Errorf("recurring %d: %w", rd.ID, err)
		}
		if end.Valid && end.String != "" {
			rd.EndDate, err = parseDate(end.String)
			if err != nil {
				return nil, fmt.Errorf("recurring %d: %w", rd.ID, err)
			}
		}
		rd.IsActive = active != 0
		out = append(out, rd)
	}
	return out, rows.Err()
}

// Categories implements reports.Repository.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, budget_cents, budget_frequency FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			amt  sql.NullInt64
			freq sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &amt, &freq); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if amt.Valid {
			c.BudgetAmount = core.Money{Cents: amt.Int64}
		}
		if freq.Valid {
			c.BudgetFrequency = core.Frequency(freq.String)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Accounts implements reports.Repository. Requesting an id that does not
// exist surfaces core.ErrNotFound rather than silently shrinking the result.
func (r *SQLiteRepository) Accounts(ctx context.Context, filter core.AccountFilter) ([]core.Account, error) {
	query := "SELECT id, name, balance_cents FROM accounts WHERE 1=1"
	var args []any

	clause, clauseArgs := accountClause(filter, "id")
	query += clause
	args = append(args, clauseArgs...)
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !filter.All() && len(out) != len(filter.IDs()) {
		return nil, fmt.Errorf("account filter: %w", core.ErrNotFound)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (name, balance_cents) VALUES (?, ?)", a.Name, a.Balance.Cents)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	var (
		amt  any
		freq any
	)
	if c.HasBudget() {
		amt = c.BudgetAmount.Cents
		freq = string(c.BudgetFrequency)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, type, budget_cents, budget_frequency) VALUES (?, ?, ?, ?)",
		c.Name, string(c.Type), amt, freq)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (account_id, category_id, type, amount_cents, date, description, is_transfer, transfer_pair_id)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL)`,
		t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Date.Format(dateLayout), t.Description)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Format(dateLayout))
	return id, nil
}

// CreateTransferPair atomically records both legs of an inter-account money
// movement: an expense leg on the source account and an income leg on the
// destination, linked through transfer_pair_id in both directions.
func (r *SQLiteRepository) CreateTransferPair(ctx context.Context, fromAccount, toAccount int64, amount core.Money, date core.Date, description string) (fromID, toID int64, err error) {
	if amount.Cents < 0 {
		return 0, 0, core.ErrInvalidAmount
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO transactions (account_id, type, amount_cents, date, description, is_transfer)
		VALUES (?, ?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, insert, fromAccount, string(core.Expense), amount.Cents, date.Format(dateLayout), description)
	if err != nil {
		return 0, 0, fmt.Errorf("insert transfer source leg: %w", err)
	}
	fromID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	res, err = tx.ExecContext(ctx, insert, toAccount, string(core.Income), amount.Cents, date.Format(dateLayout), description)
	if err != nil {
		return 0, 0, fmt.Errorf("insert transfer destination leg: %w", err)
	}
	toID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE transactions SET transfer_pair_id = ? WHERE id = ?", toID, fromID); err != nil {
		return 0, 0, fmt.Errorf("link transfer source leg: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "UPDATE transactions SET transfer_pair_id = ? WHERE id = ?", fromID, toID); err != nil {
		return 0, 0, fmt.Errorf("link transfer destination leg: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer pair saved",
		"from_id", fromID,
		"to_id", toID,
		"amount_cents", amount.Cents)
	return fromID, toID, nil
}

// DeleteTransaction removes a transaction; when the transaction is a
// transfer leg, its pair partner is removed in the same database
// transaction so a pair never survives half-deleted.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var pairID sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT transfer_pair_id FROM transactions WHERE id = ?", id).Scan(&pairID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if pairID.Valid {
		if _, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", pairID.Int64); err != nil {
			return fmt.Errorf("delete transfer pair %d: %w", pairID.Int64, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "pair_deleted", pairID.Valid)
	return nil
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rd core.RecurringDefinition) (int64, error) {
	if err := rd.Validate(); err != nil {
		return 0, err
	}
	var end any
	if rd.EndDate.IsSet() {
		end = rd.EndDate.Format(dateLayout)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_definitions (account_id, category_id, name, type, amount_cents, start_date, end_date, frequency, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		rd.AccountID, rd.CategoryID, rd.Name, string(rd.Type), rd.Amount.Cents,
		rd.StartDate.Format(dateLayout), end, string(rd.Frequency))
	if err != nil {
		return 0, fmt.Errorf("create recurring: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Recurring definition saved",
		"id", id,
		"name", rd.Name,
		"frequency", rd.Frequency,
		"amount_cents", rd.Amount.Cents)
	return id, nil
}

// DisableRecurring soft-deletes a definition. The row stays so historical
// projections remain reproducible.
func (r *SQLiteRepository) DisableRecurring(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE recurring_definitions SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("disable recurring %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recurring %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Recurring definition disabled", "id", id)
	return nil
}

func parseDate(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}
