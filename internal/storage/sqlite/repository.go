// Package sqlite stores the ledger in a SQLite database. Amounts are kept
// as decimal text so that values round-trip exactly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"
	"gastos/internal/storage"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(dbPath string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer; keeps appends ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, logger: logger}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertTransaction = `
INSERT INTO transactions (kind, amount, category, description, day, month, year)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// Append implements storage.TransactionWriter
func (r *Repository) Append(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, insertTransaction,
		t.Kind.String(),
		t.Amount.Storage(),
		t.Category,
		t.Description,
		t.Date.Day,
		t.Date.Month,
		t.Date.Year,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	id, _ := res.LastInsertId()
	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"kind", t.Kind,
		"amount", t.Amount.Storage(),
		"date", t.Date.String())

	return nil
}

const selectTransactions = `
SELECT id, kind, amount, category, description, day, month, year
FROM transactions
ORDER BY id`

// ReadAll implements storage.TransactionReader
func (r *Repository) ReadAll(ctx context.Context) ([]storage.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		var (
			id                    int64
			kind, amount          string
			category, description string
			day, month, year      int
		)
		if err := rows.Scan(&id, &kind, &amount, &category, &description, &day, &month, &year); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, decodeRow(int(id), kind, amount, category, description, core.NewDate(year, month, day)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return records, nil
}

func decodeRow(id int, kind, amount, category, description string, date core.Date) storage.Record {
	k, err := core.ParseKind(kind)
	if err != nil {
		return storage.Record{Line: id, Err: &storage.RowError{Line: id, Field: "kind", Value: kind, Err: err}}
	}
	m, err := core.ParseMoney(amount)
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		return storage.Record{Line: id, Err: &storage.RowError{Line: id, Field: "amount", Value: amount, Err: err}}
	}
	return storage.Record{
		Line: id,
		Transaction: core.Transaction{
			Kind:        k,
			Amount:      m,
			Category:    category,
			Description: description,
			Date:        date,
		},
	}
}

// Import appends every decodable record read from src and returns how many
// were copied. Broken records are skipped and logged.
func (r *Repository) Import(ctx context.Context, src storage.TransactionReader) (int, error) {
	records, err := src.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for _, rec := range records {
		if rec = rec.Checked(); rec.Err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable record during import", "line", rec.Line, "error", rec.Err)
			continue
		}
		t := rec.Transaction
		if _, err := stmt.ExecContext(ctx,
			t.Kind.String(), t.Amount.Storage(), t.Category, t.Description,
			t.Date.Day, t.Date.Month, t.Date.Year,
		); err != nil {
			return 0, fmt.Errorf("import line %d: %w", rec.Line, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	r.logger.InfoContext(ctx, "Import completed", "imported", imported, "total", len(records))
	return imported, nil
}
