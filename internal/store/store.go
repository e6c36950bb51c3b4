// Package store persists imported transactions in SQLite. Amounts are stored as
// integer cents through money.Cents.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cleared-dev/bankimport/internal/model"
	"github.com/cleared-dev/bankimport/internal/money"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

const dateFormat = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS bank (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS account (
	id                     INTEGER PRIMARY KEY,
	name                   TEXT NOT NULL,
	bank_id                INTEGER NOT NULL REFERENCES bank(id),
	account_type           TEXT NOT NULL,
	initial_balance_cents  INTEGER NOT NULL DEFAULT 0,
	current_balance_cents  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS category (
	id              INTEGER PRIMARY KEY,
	name            TEXT NOT NULL UNIQUE,
	color           TEXT NOT NULL DEFAULT '',
	secondary_color TEXT NOT NULL DEFAULT '',
	icon            TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS transactions (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	amount_cents INTEGER NOT NULL,
	date         TEXT NOT NULL,
	account_id   INTEGER NOT NULL REFERENCES account(id),
	category_id  INTEGER NOT NULL REFERENCES category(id)
);
CREATE INDEX IF NOT EXISTS transactions_date ON transactions(date, id);
`

// DefaultBanks are seeded into a new database, one per built-in importer.
var DefaultBanks = []string{"Bank Of America", "Wells Fargo", "American Express", "Chase"}

// DefaultCategories are seeded into a new database in this order.
var DefaultCategories = []model.Category{
	{Name: "Uncategorized", Color: "#9ca3af", Icon: "circle-help"},
	{Name: "Income", Color: "#22c55e", Icon: "banknote"},
	{Name: "Housing", Color: "#f97316", Icon: "house"},
	{Name: "Groceries", Color: "#84cc16", Icon: "shopping-basket"},
	{Name: "Restaurants", Color: "#ef4444", Icon: "utensils"},
	{Name: "Transportation", Color: "#3b82f6", Icon: "car"},
	{Name: "Healthcare", Color: "#ec4899", Icon: "heart-pulse"},
	{Name: "Savings", Color: "#14b8a6", Icon: "piggy-bank"},
	{Name: "Education", Color: "#6366f1", Icon: "graduation-cap"},
	{Name: "Entertainment", Color: "#a855f7", Icon: "clapperboard"},
	{Name: "Shopping", Color: "#eab308", Icon: "shopping-bag"},
	{Name: "Hobbies", Color: "#06b6d4", Icon: "palette"},
	{Name: "Miscellaneous", Color: "#64748b", Icon: "shapes"},
}

// Store provides database access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and brings the schema up to date.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases and PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for _, name := range DefaultBanks {
		if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO bank (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("seeding bank %s: %w", name, err)
		}
	}
	for _, c := range DefaultCategories {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO category (name, color, secondary_color, icon) VALUES (?, ?, ?, ?)",
			c.Name, c.Color, c.SecondaryColor, c.Icon)
		if err != nil {
			return fmt.Errorf("seeding category %s: %w", c.Name, err)
		}
	}
	return nil
}

// SaveImports inserts txns for one account and category in a single transaction and
// returns the new row IDs in input order. Nothing is written if any amount cannot be
// stored as whole cents.
func (s *Store) SaveImports(ctx context.Context, accountID, categoryID int64, txns []model.TransactionImport) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := exists(ctx, tx, "account", accountID); err != nil {
		return nil, err
	}
	if err := exists(ctx, tx, "category", categoryID); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO transactions (name, amount_cents, date, account_id, category_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(txns))
	for i, t := range txns {
		cents, err := money.Encode(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, t, err)
		}
		res, err := stmt.ExecContext(ctx, t.Name, cents, t.Date.Format(dateFormat), accountID, categoryID)
		if err != nil {
			return nil, fmt.Errorf("inserting row %d (%s): %w", i, t, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading id of row %d: %w", i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing imports: %w", err)
	}
	return ids, nil
}

// Transactions returns stored transactions ordered by date then id. limit <= 0 returns all.
func (s *Store) Transactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount_cents, date, account_id, category_id FROM transactions ORDER BY date, id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t      model.Transaction
			amount money.Cents
			date   string
		)
		if err := rows.Scan(&t.ID, &t.Name, &amount, &date, &t.AccountID, &t.CategoryID); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Amount = amount.Decimal
		if t.Date, err = time.Parse(dateFormat, date); err != nil {
			return nil, fmt.Errorf("parsing date of transaction %d: %w", t.ID, err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// Categories returns all categories ordered by id.
func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color, secondary_color, icon FROM category ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.SecondaryColor, &c.Icon); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// AddCategory inserts a category and returns its id.
func (s *Store) AddCategory(ctx context.Context, c model.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO category (name, color, secondary_color, icon) VALUES (?, ?, ?, ?)",
		c.Name, c.Color, c.SecondaryColor, c.Icon)
	if err != nil {
		return 0, fmt.Errorf("inserting category %s: %w", c.Name, err)
	}
	return res.LastInsertId()
}

// Accounts returns all accounts with their bank names, ordered by id.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.bank_id, b.name, a.account_type, a.initial_balance_cents, a.current_balance_cents
		FROM account a JOIN bank b ON b.id = a.bank_id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var (
			a                model.Account
			initial, current money.Cents
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.BankID, &a.BankName, &a.Type, &initial, &current); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.InitialBalance = initial.Decimal
		a.CurrentBalance = current.Decimal
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

// AddAccount inserts an account under the bank named a.BankName and returns its id.
// The current balance starts at the initial balance.
func (s *Store) AddAccount(ctx context.Context, a model.Account) (int64, error) {
	var bankID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM bank WHERE name = ?", a.BankName).Scan(&bankID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("bank %q: %w", a.BankName, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up bank %q: %w", a.BankName, err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO account (name, bank_id, account_type, initial_balance_cents, current_balance_cents) VALUES (?, ?, ?, ?, ?)",
		a.Name, bankID, string(a.Type), money.NewCents(a.InitialBalance), money.NewCents(a.InitialBalance))
	if err != nil {
		return 0, fmt.Errorf("inserting account %s: %w", a.Name, err)
	}
	return res.LastInsertId()
}

func exists(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up %s %d: %w", table, id, err)
	}
	return nil
}
