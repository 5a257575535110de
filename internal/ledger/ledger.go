// Package ledger holds the in-memory, append-only list of transactions and
// keeps it in step with the persistence adapter.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// PersistenceError wraps a failure of the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err carries a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Loaded  int
	Skipped []storage.Record
}

type Ledger struct {
	store  storage.Store
	logger *slog.Logger
	items  []core.Transaction
}

func New(store storage.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// Load replaces the in-memory view with the store's content. Rows that
// cannot be decoded or that hold an invalid transaction are skipped and listed in the report. If the store
// cannot be read at all the ledger is left empty and a PersistenceError
// is returned.
func (l *Ledger) Load(ctx context.Context) (LoadReport, error) {
	l.items = nil

	records, err := l.store.ReadAll(ctx)
	if err != nil {
		return LoadReport{}, &PersistenceError{Op: "load", Err: err}
	}

	var report LoadReport
	items := make([]core.Transaction, 0, len(records))
	for _, rec := range records {
		if rec = rec.Checked(); rec.Err != nil {
			report.Skipped = append(report.Skipped, rec)
			l.logger.WarnContext(ctx, "Skipping unreadable ledger record",
				"line", rec.Line,
				"error", rec.Err)
			continue
		}
		items = append(items, rec.Transaction)
	}
	l.items = items
	report.Loaded = len(items)

	l.logger.InfoContext(ctx, "Ledger loaded",
		"loaded", report.Loaded,
		"skipped", len(report.Skipped))

	return report, nil
}

// Append validates t, adds it to memory and persists it. When the store
// fails the in-memory append is undone.
func (l *Ledger) Append(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	n := len(l.items)
	l.items = append(l.items, t)

	if err := l.store.Append(ctx, t); err != nil {
		l.items = l.items[:n:n]
		l.logger.ErrorContext(ctx, "Transaction not persisted, rolled back",
			"kind", t.Kind,
			"date", t.Date.String(),
			"error", err)
		return &PersistenceError{Op: "append", Err: err}
	}
	return nil
}

// All returns a copy of the transactions in insertion order.
func (l *Ledger) All() []core.Transaction {
	return append([]core.Transaction(nil), l.items...)
}

func (l *Ledger) Len() int {
	return len(l.items)
}
