package backend

import (
	"context"

	"balancebot/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the created store, the optional mirror publisher, and an
// optional cleanup function.
type Result struct {
	Store     services.Store
	Publisher services.SyncPublisher
	Cleanup   CleanupFunc
}

// Factory creates ledger backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// CSV specific
	CSVPath string
}

// Type selects the ledger store implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	CSVBackend    Type = "csv"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, CSVBackend:
		return true
	default:
		return false
	}
}
