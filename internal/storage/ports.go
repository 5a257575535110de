// Package storage defines the persistence ports the ledger depends on.
// Adapters live in the csvfile, sqlite and memory subpackages.
package storage

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/core"
)

// Ports for persistence adapters.
type (
	// TransactionReader returns every persisted record in insertion order.
	// A missing backing store yields no records and no error.
	TransactionReader interface {
		ReadAll(ctx context.Context) ([]Record, error)
	}

	// TransactionWriter durably appends a single transaction.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) error
	}

	Store interface {
		TransactionReader
		TransactionWriter
	}

	// Importer bulk-copies records from another reader in one unit of work.
	Importer interface {
		Import(ctx context.Context, src TransactionReader) (int, error)
	}
)

// Records is an already-read set of records usable as a reader.
type Records []Record

func (r Records) ReadAll(context.Context) ([]Record, error) {
	return r, nil
}

// Record is one persisted row. Err is set when the row exists but could
// not be decoded; Transaction is then the zero value.
type Record struct {
	Line        int
	Transaction core.Transaction
	Err         error
}

// Checked returns r unchanged when it decoded into a valid transaction.
// A transaction that breaks the domain rules (e.g. a non-positive amount)
// becomes a RowError so callers skip it like any other unreadable row.
func (r Record) Checked() Record {
	if r.Err != nil {
		return r
	}
	if err := r.Transaction.Validate(); err != nil {
		field, value := offendingField(r.Transaction, err)
		return Record{Line: r.Line, Err: &RowError{Line: r.Line, Field: field, Value: value, Err: err}}
	}
	return r
}

func offendingField(t core.Transaction, err error) (string, string) {
	switch {
	case errors.Is(err, core.ErrInvalidKind):
		return "kind", t.Kind.String()
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount", t.Amount.Storage()
	case errors.Is(err, core.ErrInvalidDay), errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidYear), errors.Is(err, core.ErrInvalidDate):
		return "date", t.Date.String()
	case errors.Is(err, core.ErrEmptyDescription):
		return "description", t.Description
	case errors.Is(err, core.ErrEmptyCategory), errors.Is(err, core.ErrIncomeCategoryOnly):
		return "category", t.Category
	}
	return "*", ""
}

var ErrUnknownSchema = errors.New("unknown ledger schema")

// RowError describes a row that could not be decoded.
type RowError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: field %s=%q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
