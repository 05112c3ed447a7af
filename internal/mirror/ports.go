package mirror

import (
	"context"

	"balancebot/internal/core"
)

// Ports for outbound mirror adapters.
type (
	// EntryAppender writes a ledger entry to the mirror and returns an
	// adapter-specific row reference for logging.
	EntryAppender interface {
		Append(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	// EntryRemover removes the mirrored row for a date. Removing a date
	// that was never mirrored is not an error.
	EntryRemover interface {
		Remove(ctx context.Context, date core.Date) error
	}
)
