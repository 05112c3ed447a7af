package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"balancebot/internal/amqp"
	"balancebot/internal/core"
	"balancebot/internal/mirror"
)

// Storage is the subset of the SQLite store the worker needs.
type Storage interface {
	GetEntry(ctx context.Context, date core.Date) (*core.Entry, error)
	GetPendingSync(ctx context.Context, limit int) ([]core.Date, error)
	MarkSynced(ctx context.Context, date core.Date) error
	MarkSyncError(ctx context.Context, date core.Date) error
}

// MirrorWorker copies ledger rows from SQLite to the spreadsheet mirror.
// AMQP messages drive the normal flow; the pending sweep covers messages
// lost while the worker was down.
type MirrorWorker struct {
	storage   Storage
	appender  mirror.EntryAppender
	remover   mirror.EntryRemover
	batchSize int
}

func NewMirrorWorker(storage Storage, appender mirror.EntryAppender, remover mirror.EntryRemover, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		appender:  appender,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "date", msg.Date)

	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	entry, err := w.storage.GetEntry(ctx, date)
	if errors.Is(err, core.ErrEntryNotFound) {
		// The row was deleted between publish and consume. Nothing to
		// mirror, and requeueing would poison the queue.
		slog.WarnContext(ctx, "Entry no longer in storage, skipping mirror", "date", msg.Date)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.mirrorEntry(ctx, *entry); err != nil {
		return fmt.Errorf("mirror entry: %w", err)
	}
	return nil
}

// HandleDeleteMessage processes a single entry delete message from AMQP.
func (w *MirrorWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EntryDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "date", msg.Date)

	if w.remover == nil {
		slog.WarnContext(ctx, "No mirror remover configured, skipping row removal", "date", msg.Date)
		return nil
	}

	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	if err := w.remover.Remove(ctx, date); err != nil {
		slog.ErrorContext(ctx, "Failed to remove mirrored row", "date", msg.Date, "error", err)
		return fmt.Errorf("remove mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Successfully removed mirrored row", "date", msg.Date)
	return nil
}

// ProcessPending mirrors any rows that have not been synced yet. This is a
// backup mechanism in case AMQP messages are lost.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, date := range pending {
		entry, err := w.storage.GetEntry(ctx, date)
		if errors.Is(err, core.ErrEntryNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "date", date.String(), "error", err)
			if err := w.storage.MarkSyncError(ctx, date); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "date", date.String(), "error", err)
			}
			continue
		}

		if err := w.mirrorEntry(ctx, *entry); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry", "date", date.String(), "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck mirrors pending rows at worker startup. Useful to recover
// from missed AMQP messages or worker downtime.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	// Larger batch for the startup sweep.
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...", "count", len(pending))

	successCount := 0
	errorCount := 0

	for _, date := range pending {
		entry, err := w.storage.GetEntry(ctx, date)
		if errors.Is(err, core.ErrEntryNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry for startup sync", "date", date.String(), "error", err)
			if err := w.storage.MarkSyncError(ctx, date); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "date", date.String(), "error", err)
			}
			errorCount++
			continue
		}

		if err := w.mirrorEntry(ctx, *entry); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry during startup", "date", date.String(), "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *MirrorWorker) mirrorEntry(ctx context.Context, entry core.Entry) error {
	ref, err := w.appender.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.Date); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "date", entry.Date.String(), "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, entry.Date); err != nil {
		// The row is mirrored; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "date", entry.Date.String(), "error", err)
	}

	slog.InfoContext(ctx, "Successfully mirrored entry",
		"date", entry.Date.String(),
		"sheets_ref", ref,
		"price_cents", entry.Price.Cents,
		"balance_cents", entry.Balance.Cents)

	return nil
}
