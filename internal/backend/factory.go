// Package backend wires a ledger store and its optional mirror publisher
// from configuration. The bot binary stays agnostic of which store backs
// the ledger.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"balancebot/internal/amqp"
	"balancebot/internal/csvfile"
	"balancebot/internal/services"
	"balancebot/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case CSVBackend:
		return f.createCSVBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	// AMQP is optional: without it the ledger works, only mirroring stops.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without mirror", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	cleanup := func() error {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		return store.Close()
	}

	return &Result{
		Store:     store,
		Publisher: publisher,
		Cleanup:   cleanup,
	}, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) (*Result, error) {
	store, err := csvfile.Open(config.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV store: %w", err)
	}

	f.logger.Info("Initialized CSV backend", "path", config.CSVPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
