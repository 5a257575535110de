package backend

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
	"gastos/internal/storage/csvfile"
	"gastos/internal/storage/memory"
	"gastos/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case CSVBackend:
		store = f.createCSVStore(config)
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	publisher := f.createPublisher(ctx, config)

	service := services.NewTransactionService(store, publisher, f.logger)

	return &BackendResult{
		Store:   store,
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createCSVStore(config Config) storage.Store {
	store := csvfile.New(config.LedgerFile, f.logger.WithComponent(log.ComponentStorage).Slog())
	f.logger.Info("Initialized CSV backend", log.FieldPath, config.LedgerFile)
	return store
}

func (f *DefaultFactory) createSQLiteStore(config Config) (storage.Store, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath, f.logger.WithComponent(log.ComponentStorage).Slog())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore() storage.Store {
	f.logger.Info("Initialized memory backend")
	return memory.New()
}

// createPublisher returns nil when AMQP is not configured or unreachable;
// the ledger works without it.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue,
		f.logger.WithComponent(log.ComponentAMQP).Slog())
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
