// Package csvfile implements the ledger store over a single flat CSV file,
// one row per date with the same four columns as the SQLite table. Every
// mutation rewrites the file atomically (temp file + rename), replacing the
// process-wide mutable table the original design relied on.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"balancebot/internal/core"
)

var header = []string{"date", "day_of_week", "price_cents", "balance_cents"}

type Store struct {
	mu      sync.Mutex
	path    string
	entries []core.Entry // sorted by date ascending, stored balance snapshots
}

// Open loads the ledger from path, creating an empty file with a header row
// when none exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return s.writeLocked()
	}
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}

	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == header[0] {
			continue
		}
		if len(rec) != len(header) {
			return fmt.Errorf("ledger file row %d: expected %d columns, got %d", i+1, len(header), len(rec))
		}
		entry, err := parseRecord(rec)
		if err != nil {
			return fmt.Errorf("ledger file row %d: %w", i+1, err)
		}
		s.entries = append(s.entries, entry)
	}

	s.sortLocked()
	return nil
}

func parseRecord(rec []string) (core.Entry, error) {
	date, err := core.ParseDate(rec[0])
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse date %q: %w", rec[0], err)
	}
	price, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse price %q: %w", rec[2], err)
	}
	var balance int64
	if rec[3] != "" {
		balance, err = strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return core.Entry{}, fmt.Errorf("parse balance %q: %w", rec[3], err)
		}
	}
	return core.Entry{
		Date:      date,
		DayOfWeek: rec[1],
		Price:     core.Money{Cents: price},
		Balance:   core.Money{Cents: balance},
	}, nil
}

func (s *Store) sortLocked() {
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].Date.Before(s.entries[j].Date.Time)
	})
}

// writeLocked rewrites the whole file atomically. Callers must hold mu (or
// have exclusive access during load).
func (s *Store) writeLocked() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".balance-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range s.entries {
		rec := []string{
			e.Date.String(),
			e.DayOfWeek,
			strconv.FormatInt(e.Price.Cents, 10),
			strconv.FormatInt(e.Balance.Cents, 10),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *Store) Insert(_ context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.Date.Equal(e.Date.Time) {
			return fmt.Errorf("date %s: %w", e.Date, core.ErrDuplicateDate)
		}
	}

	s.entries = append(s.entries, e)
	s.sortLocked()

	if err := s.writeLocked(); err != nil {
		// Roll the in-memory table back so memory and file stay in step.
		s.removeLocked(e.Date)
		return err
	}
	return nil
}

func (s *Store) Delete(_ context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeLocked(date)
	if removed == nil {
		return fmt.Errorf("date %s: %w", date, core.ErrEntryNotFound)
	}

	if err := s.writeLocked(); err != nil {
		s.entries = append(s.entries, *removed)
		s.sortLocked()
		return err
	}
	return nil
}

func (s *Store) removeLocked(date core.Date) *core.Entry {
	for i, e := range s.entries {
		if e.Date.Equal(date.Time) {
			removed := e
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return &removed
		}
	}
	return nil
}

// List returns entries ordered by date ascending with balances derived at
// read time, matching the SQLite store's window semantics.
func (s *Store) List(_ context.Context, period core.Period) ([]core.Entry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Entry
	if period.WholeLedger() {
		var running int64
		for _, e := range s.entries {
			running += e.Price.Cents
			e.Balance = core.Money{Cents: running}
			out = append(out, e)
		}
		return out, nil
	}

	// Running sum per (year, month) partition; the filter itself matches the
	// month of any year.
	partitions := make(map[int]int64)
	for _, e := range s.entries {
		if e.Date.Month() != period.Month {
			continue
		}
		key := e.Date.Year()*100 + e.Date.Month()
		partitions[key] += e.Price.Cents
		e.Balance = core.Money{Cents: partitions[key]}
		out = append(out, e)
	}
	return out, nil
}

// Last returns the chronologically last entry with its stored balance
// snapshot, or nil when the ledger is empty.
func (s *Store) Last(_ context.Context) (*core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	last := s.entries[len(s.entries)-1]
	return &last, nil
}

func (s *Store) Close() error {
	return nil
}
