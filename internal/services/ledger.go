// Package services holds the business layer: the ledger service translating
// chat-level requests into store operations, the balance policies, and the
// daily charge processor.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"balancebot/internal/core"
)

// Store is the ledger store port. Both the SQLite and the CSV backends
// implement it.
type Store interface {
	Insert(ctx context.Context, e core.Entry) error
	Delete(ctx context.Context, date core.Date) error
	List(ctx context.Context, period core.Period) ([]core.Entry, error)
	Last(ctx context.Context) (*core.Entry, error)
}

// SyncPublisher publishes mirror events after successful mutations. A nil
// publisher disables mirroring.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, date core.Date) error
	PublishEntryDelete(ctx context.Context, date core.Date) error
}

// Policy selects how the running balance is computed.
type Policy string

const (
	// PolicyMonthly derives the balance at read time, partitioned per
	// calendar month. Nothing is stored per row.
	PolicyMonthly Policy = "monthly"
	// PolicyCumulative stores a running-total snapshot with each row,
	// computed from the last existing entry at insert time.
	PolicyCumulative Policy = "cumulative"
)

// Result is what the command dispatcher renders: expected business outcomes
// (bad argument, duplicate, not found) come back as OK=false with an
// explanatory message, never as an error. Errors are reserved for store
// faults and map to a generic failure reply.
type Result struct {
	OK      bool
	Message string
	Entries []core.Entry
}

// User-facing outcome messages.
const (
	MsgInvalidDate  = "❌ Неверный формат даты. Используйте формат YYYY-MM-DD, например 2025-02-01."
	MsgInvalidMonth = "❌ Неверный номер месяца. Укажите число от 1 до 12."
	MsgDeleteUsage  = "❌ Укажите дату записи для удаления в формате YYYY-MM-DD."
	MsgEmptyLedger  = "⚠️ Баланс не найден. Добавьте данные с помощью /update_balance."
)

func msgDuplicate(date core.Date) string {
	return fmt.Sprintf("⚠️ Запись за %s уже существует.", date)
}

func msgAdded(date core.Date) string {
	return fmt.Sprintf("✅ Баланс за %s обновлен!", date)
}

func msgNotFound(date core.Date) string {
	return fmt.Sprintf("⚠️ Запись за %s не найдена.", date)
}

func msgDeleted(date core.Date) string {
	return fmt.Sprintf("🗑 Запись за %s удалена.", date)
}

// Ledger is the ledger service. It owns the balance-computation policy and
// the fixed daily fee; the store does the bookkeeping.
type Ledger struct {
	store     Store
	publisher SyncPublisher
	policy    Policy
	price     core.Money
	now       func() time.Time
}

func NewLedger(store Store, publisher SyncPublisher, policy Policy, priceCents int64) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		policy:    policy,
		price:     core.Money{Cents: priceCents},
		now:       time.Now,
	}
}

// WithClock overrides the service clock, for tests and the charge processor.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Price returns the fixed daily fee.
func (l *Ledger) Price() core.Money {
	return l.price
}

// AddEntry records the fee for the given date, or for today when the
// argument is empty. Adding twice for the same date is rejected, not merged.
func (l *Ledger) AddEntry(ctx context.Context, dateArg string) (Result, error) {
	var date core.Date
	if arg := strings.TrimSpace(dateArg); arg == "" {
		date = core.Today(l.now())
	} else {
		parsed, err := core.ParseDate(arg)
		if err != nil {
			return Result{Message: MsgInvalidDate}, nil
		}
		date = parsed
	}

	entry := core.Entry{
		Date:      date,
		DayOfWeek: core.WeekdayLabel(date),
		Price:     l.price,
	}

	if l.policy == PolicyCumulative {
		last, err := l.store.Last(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("read last entry: %w", err)
		}
		if last != nil {
			entry.Balance = last.Balance.Add(l.price)
		} else {
			entry.Balance = l.price
		}
	}

	if err := l.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, core.ErrDuplicateDate) {
			return Result{Message: msgDuplicate(date)}, nil
		}
		return Result{}, fmt.Errorf("insert entry: %w", err)
	}

	l.publishSync(ctx, date)

	return Result{OK: true, Message: msgAdded(date)}, nil
}

// DeleteEntry removes the entry for the given date. An empty argument is an
// instruction problem, not a store call.
func (l *Ledger) DeleteEntry(ctx context.Context, dateArg string) (Result, error) {
	arg := strings.TrimSpace(dateArg)
	if arg == "" {
		return Result{Message: MsgDeleteUsage}, nil
	}

	date, err := core.ParseDate(arg)
	if err != nil {
		return Result{Message: MsgInvalidDate}, nil
	}

	if err := l.store.Delete(ctx, date); err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			return Result{Message: msgNotFound(date)}, nil
		}
		return Result{}, fmt.Errorf("delete entry: %w", err)
	}

	l.publishDelete(ctx, date)

	return Result{OK: true, Message: msgDeleted(date)}, nil
}

// ListEntries returns the presentable ledger rows for the requested period.
// Without an argument the per-month policy shows the current month and the
// cumulative policy shows the whole ledger.
func (l *Ledger) ListEntries(ctx context.Context, monthArg string) (Result, error) {
	var period core.Period
	if arg := strings.TrimSpace(monthArg); arg != "" {
		month, err := strconv.Atoi(arg)
		if err != nil || !core.ValidMonth(month) {
			return Result{Message: MsgInvalidMonth}, nil
		}
		period.Month = month
	} else if l.policy == PolicyMonthly {
		period.Month = core.Today(l.now()).Month()
	}

	entries, err := l.store.List(ctx, period)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			return Result{Message: MsgInvalidMonth}, nil
		}
		return Result{}, fmt.Errorf("list entries: %w", err)
	}

	if len(entries) == 0 {
		// Explicit empty signal, distinct from a query error.
		return Result{OK: true, Message: MsgEmptyLedger}, nil
	}

	return Result{OK: true, Entries: entries}, nil
}

// publishSync and publishDelete never fail the user request: the row is
// already persisted locally and the periodic sweep will catch up.
func (l *Ledger) publishSync(ctx context.Context, date core.Date) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishEntrySync(ctx, date); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry sync message",
			"date", date.String(), "error", err)
	}
}

func (l *Ledger) publishDelete(ctx context.Context, date core.Date) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishEntryDelete(ctx, date); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry delete message",
			"date", date.String(), "error", err)
	}
}
