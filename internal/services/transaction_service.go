package services

import (
	"context"
	"fmt"
	"io"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// Publisher announces recorded transactions. *amqp.Client satisfies it.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
	Close() error
}

// ImportReport summarizes an Import call.
type ImportReport struct {
	Imported int
	Skipped  []storage.Record
}

// TransactionService orchestrates ledger appends and event publishing
type TransactionService struct {
	ledger     *ledger.Ledger
	store      storage.Store
	publisher  Publisher
	logger     *log.Logger
	structured *log.StructuredLogger
}

// NewTransactionService wires the ledger over store. publisher may be nil.
func NewTransactionService(store storage.Store, publisher Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentServices)
	return &TransactionService{
		ledger:     ledger.New(store, logger.WithComponent(log.ComponentLedger).Slog()),
		store:      store,
		publisher:  publisher,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
	}
}

// Ledger exposes the in-memory view for queries.
func (s *TransactionService) Ledger() *ledger.Ledger {
	return s.ledger
}

// Load fills the ledger from the store.
func (s *TransactionService) Load(ctx context.Context) (ledger.LoadReport, error) {
	return s.ledger.Load(ctx)
}

// Add builds a transaction from validated parts and records it.
func (s *TransactionService) Add(ctx context.Context, kind core.Kind, amount core.Money, category, description string, date core.Date) (core.Transaction, error) {
	t, err := core.NewTransaction(kind, amount, category, description, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build transaction: %w", err)
	}
	if err := s.Record(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Record appends t to the ledger and then publishes it. A publish failure
// is logged and never fails the call since the ledger is already durable.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) error {
	if err := s.ledger.Append(ctx, t); err != nil {
		return err
	}

	s.structured.LogTransactionRecorded(ctx, t.Kind.String(), t.Amount.Storage(), t.Category, t.Description, t.Date.String())

	if err := s.publish(ctx, t); err != nil {
		s.structured.LogError(ctx, "Failed to publish transaction recorded message", err, log.OpPublish,
			log.NewFields().WithTransaction(t.Kind.String(), t.Amount.Storage(), t.Category, t.Description, t.Date.String()))
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event")
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, t)
}

// Import copies every valid record from src into the store. Unreadable or
// invalid records are reported in Skipped before anything is written.
// Stores that implement storage.Importer do it in a single unit of work;
// otherwise the records are appended one at a time. The ledger is reloaded
// afterwards. Imported transactions are not published.
func (s *TransactionService) Import(ctx context.Context, src storage.TransactionReader) (ImportReport, error) {
	records, err := src.ReadAll(ctx)
	if err != nil {
		return ImportReport{}, &ledger.PersistenceError{Op: log.OpImport, Err: err}
	}

	var report ImportReport
	good := make(storage.Records, 0, len(records))
	for _, rec := range records {
		if rec = rec.Checked(); rec.Err != nil {
			report.Skipped = append(report.Skipped, rec)
			continue
		}
		good = append(good, rec)
	}

	if importer, ok := s.store.(storage.Importer); ok {
		n, err := importer.Import(ctx, good)
		if err != nil {
			return report, &ledger.PersistenceError{Op: log.OpImport, Err: err}
		}
		report.Imported = n
		if _, err := s.ledger.Load(ctx); err != nil {
			return report, err
		}
	} else {
		for _, rec := range good {
			if err := s.ledger.Append(ctx, rec.Transaction); err != nil {
				return report, err
			}
			report.Imported++
		}
	}

	s.logger.InfoContext(ctx, "Import completed",
		log.FieldOperation, log.OpImport,
		log.FieldCount, report.Imported,
		"skipped", len(report.Skipped))

	return report, nil
}

// Close closes the publisher and, when it holds resources, the store.
func (s *TransactionService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
