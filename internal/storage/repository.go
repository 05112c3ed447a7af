package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"balancebot/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable ledger store: one row per calendar date in the
// balance table. The running balance is never trusted from storage on read;
// list queries derive it with a window aggregate so deletes can never leave
// stale totals visible.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert persists one ledger entry. The duplicate check and the insert run in
// a single transaction so two concurrent adds for the same date cannot both
// pass the check; the primary key on date is the backstop.
func (s *SQLiteStore) Insert(ctx context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM balance WHERE date = ?)`, e.Date.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing entry: %w", err)
	}
	if exists {
		return fmt.Errorf("date %s: %w", e.Date, core.ErrDuplicateDate)
	}

	// balance_cents stays NULL under the per-month policy; the stored value
	// is a write-time snapshot either way and is derived again on read.
	balance := sql.NullInt64{Int64: e.Balance.Cents, Valid: e.Balance.Cents != 0}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO balance (date, day_of_week, price_cents, balance_cents) VALUES (?, ?, ?, ?)`,
		e.Date.String(), e.DayOfWeek, e.Price.Cents, balance,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"date", e.Date.String(),
		"day_of_week", e.DayOfWeek,
		"price_cents", e.Price.Cents)

	return nil
}

// Delete removes exactly one row by date.
func (s *SQLiteStore) Delete(ctx context.Context, date core.Date) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM balance WHERE date = ?`, date.String())
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("date %s: %w", date, core.ErrEntryNotFound)
	}

	slog.InfoContext(ctx, "Entry deleted from SQLite", "date", date.String())
	return nil
}

// List returns entries ordered by date ascending with the balance derived at
// read time: a whole-ledger running sum for the unfiltered case, a per
// (year, month) window for the month filter. The month filter matches the
// month of any year.
func (s *SQLiteStore) List(ctx context.Context, period core.Period) ([]core.Entry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var (
		rows *sql.Rows
		err  error
	)
	if period.WholeLedger() {
		rows, err = s.db.QueryContext(ctx, `
			SELECT date, day_of_week, price_cents,
			       SUM(price_cents) OVER (ORDER BY date) AS balance_cents
			FROM balance
			ORDER BY date`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT date, day_of_week, price_cents,
			       SUM(price_cents) OVER (PARTITION BY strftime('%Y-%m', date) ORDER BY date) AS balance_cents
			FROM balance
			WHERE CAST(strftime('%m', date) AS INTEGER) = ?
			ORDER BY date`, period.Month)
	}
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Last returns the chronologically last entry with its stored balance
// snapshot, or nil when the ledger is empty. The cumulative policy computes
// the next stored balance from it at insert time.
func (s *SQLiteStore) Last(ctx context.Context) (*core.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, day_of_week, price_cents, balance_cents
		FROM balance
		ORDER BY date DESC
		LIMIT 1`)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntry returns the stored row for a date, as persisted.
func (s *SQLiteStore) GetEntry(ctx context.Context, date core.Date) (*core.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, day_of_week, price_cents, balance_cents
		FROM balance
		WHERE date = ?`, date.String())

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("date %s: %w", date, core.ErrEntryNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetPendingSync returns the dates of rows not yet mirrored, oldest first.
func (s *SQLiteStore) GetPendingSync(ctx context.Context, limit int) ([]core.Date, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date FROM balance
		WHERE synced = 0
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending entries: %w", err)
	}
	defer rows.Close()

	var dates []core.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan pending date: %w", err)
		}
		date, err := core.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("parse pending date %q: %w", raw, err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}

	return dates, nil
}

// MarkSynced marks an entry as successfully mirrored.
func (s *SQLiteStore) MarkSynced(ctx context.Context, date core.Date) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE balance SET synced = 1, sync_error = 0 WHERE date = ?`, date.String())
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as synced", "date", date.String())
	return nil
}

// MarkSyncError marks an entry as having failed to mirror.
func (s *SQLiteStore) MarkSyncError(ctx context.Context, date core.Date) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE balance SET sync_error = 1 WHERE date = ?`, date.String())
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "date", date.String())
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var (
		rawDate   string
		dayOfWeek string
		price     int64
		balance   sql.NullInt64
	)
	if err := row.Scan(&rawDate, &dayOfWeek, &price, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Entry{}, err
		}
		return core.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse stored date %q: %w", rawDate, err)
	}

	return core.Entry{
		Date:      date,
		DayOfWeek: dayOfWeek,
		Price:     core.Money{Cents: price},
		Balance:   core.Money{Cents: balance.Int64},
	}, nil
}
