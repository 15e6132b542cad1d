package backend

import (
	"context"
	"fmt"
	"log/slog"

	"costmanager/internal/amqp"
	"costmanager/internal/services"
	"costmanager/internal/storage"
	"costmanager/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store storage.CostStore
	switch config.Type {
	case SQLiteBackend:
		s, err := storage.Open(ctx, config.DBDir, config.DBName, config.DBVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to open cost store: %w", err)
		}
		store = s
		f.logger.Info("Initialized SQLite backend",
			"db_dir", config.DBDir,
			"db_name", config.DBName,
			"db_version", config.DBVersion)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	publisher := f.createPublisher(config)
	costs := services.NewCostService(store, publisher)

	return &BackendResult{
		Store:   store,
		Costs:   costs,
		Cleanup: costs.Close,
	}, nil
}

// createPublisher connects to AMQP when configured. A broker that cannot be
// reached only disables events.
func (f *DefaultFactory) createPublisher(config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
