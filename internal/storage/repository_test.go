package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"balancebot/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "balance.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(date core.Date) core.Entry {
	return core.Entry{
		Date:      date,
		DayOfWeek: core.WeekdayLabel(date),
		Price:     core.Money{Cents: 2000},
	}
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "balance.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	store.Close()

	// Reopening runs migrations again against the existing schema.
	store, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	store.Close()
}

func TestSQLiteStore_InsertDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := core.NewDate(2025, 2, 1)

	if err := store.Insert(ctx, testEntry(date)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := store.Insert(ctx, testEntry(date))
	if !errors.Is(err, core.ErrDuplicateDate) {
		t.Fatalf("second insert error = %v, want ErrDuplicateDate", err)
	}

	// The failed insert must not have touched the store.
	entries, err := store.List(ctx, core.Period{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestSQLiteStore_DeleteNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Delete(ctx, core.NewDate(2025, 2, 1))
	if !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("Delete error = %v, want ErrEntryNotFound", err)
	}
}

func TestSQLiteStore_DeleteThenReAdd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := core.NewDate(2025, 2, 1)

	if err := store.Insert(ctx, testEntry(date)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Delete(ctx, date); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Insert(ctx, testEntry(date)); err != nil {
		t.Fatalf("re-add after delete: %v", err)
	}

	entry, err := store.GetEntry(ctx, date)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry.DayOfWeek != "Суббота" {
		t.Errorf("DayOfWeek = %q, want Суббота", entry.DayOfWeek)
	}
}

func TestSQLiteStore_ListEmptyLedger(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(context.Background(), core.Period{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestSQLiteStore_ListInvalidMonth(t *testing.T) {
	store := newTestStore(t)

	for _, month := range []int{-1, 13, 99} {
		_, err := store.List(context.Background(), core.Period{Month: month})
		if !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("List(month=%d) error = %v, want ErrInvalidMonth", month, err)
		}
	}
}

func TestSQLiteStore_ListDerivesWholeLedgerBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2025, 1, 30),
		core.NewDate(2025, 1, 31),
		core.NewDate(2025, 2, 1),
		core.NewDate(2025, 2, 2),
	}
	for _, d := range dates {
		if err := store.Insert(ctx, testEntry(d)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	entries, err := store.List(ctx, core.Period{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	for i, e := range entries {
		want := int64(i+1) * 2000
		if e.Balance.Cents != want {
			t.Errorf("entry %d balance = %d, want %d", i, e.Balance.Cents, want)
		}
	}
}

func TestSQLiteStore_ListMonthWindowResetsBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2025, 1, 31),
		core.NewDate(2025, 2, 1),
		core.NewDate(2025, 2, 2),
	} {
		if err := store.Insert(ctx, testEntry(d)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	entries, err := store.List(ctx, core.Period{Month: 2})
	if err != nil {
		t.Fatalf("List(month=2): %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// January's entry must not leak into February's running sum.
	if entries[0].Balance.Cents != 2000 {
		t.Errorf("first February balance = %d, want 2000", entries[0].Balance.Cents)
	}
	if entries[1].Balance.Cents != 4000 {
		t.Errorf("second February balance = %d, want 4000", entries[1].Balance.Cents)
	}
	if entries[0].Date.String() != "2025-02-01" || entries[1].Date.String() != "2025-02-02" {
		t.Errorf("unexpected order: %v, %v", entries[0].Date, entries[1].Date)
	}
}

func TestSQLiteStore_MonthFilterMatchesAnyYearButPartitionsByYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2024, 2, 10),
		core.NewDate(2024, 2, 11),
		core.NewDate(2025, 2, 1),
	} {
		if err := store.Insert(ctx, testEntry(d)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	entries, err := store.List(ctx, core.Period{Month: 2})
	if err != nil {
		t.Fatalf("List(month=2): %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// 2024 February accumulates on its own; 2025 February starts fresh.
	if entries[1].Balance.Cents != 4000 {
		t.Errorf("2024-02-11 balance = %d, want 4000", entries[1].Balance.Cents)
	}
	if entries[2].Balance.Cents != 2000 {
		t.Errorf("2025-02-01 balance = %d, want 2000", entries[2].Balance.Cents)
	}
}

func TestSQLiteStore_DeleteMidLedgerKeepsDerivedBalancesConsistent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2025, 2, 1),
		core.NewDate(2025, 2, 2),
		core.NewDate(2025, 2, 3),
	} {
		if err := store.Insert(ctx, testEntry(d)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	if err := store.Delete(ctx, core.NewDate(2025, 2, 2)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, err := store.List(ctx, core.Period{Month: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Balance.Cents != 2000 || entries[1].Balance.Cents != 4000 {
		t.Errorf("balances after delete = %d, %d, want 2000, 4000",
			entries[0].Balance.Cents, entries[1].Balance.Cents)
	}
}

func TestSQLiteStore_Last(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	last, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("Last on empty ledger: %v", err)
	}
	if last != nil {
		t.Fatalf("Last on empty ledger = %+v, want nil", last)
	}

	e := testEntry(core.NewDate(2025, 2, 1))
	e.Balance = core.Money{Cents: 2000}
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	e2 := testEntry(core.NewDate(2025, 2, 2))
	e2.Balance = core.Money{Cents: 4000}
	if err := store.Insert(ctx, e2); err != nil {
		t.Fatalf("insert: %v", err)
	}

	last, err = store.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil || last.Date.String() != "2025-02-02" {
		t.Fatalf("Last = %+v, want entry for 2025-02-02", last)
	}
	if last.Balance.Cents != 4000 {
		t.Errorf("Last stored balance = %d, want 4000", last.Balance.Cents)
	}
}

func TestSQLiteStore_PendingSyncLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d1 := core.NewDate(2025, 2, 1)
	d2 := core.NewDate(2025, 2, 2)
	for _, d := range []core.Date{d1, d2} {
		if err := store.Insert(ctx, testEntry(d)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	pending, err := store.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d entries, want 2", len(pending))
	}

	if err := store.MarkSynced(ctx, d1); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = store.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 1 || pending[0].String() != d2.String() {
		t.Fatalf("pending after MarkSynced = %v, want [%v]", pending, d2)
	}

	if err := store.MarkSyncError(ctx, d2); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}
	// A sync error keeps the row pending for the periodic sweep.
	pending, err = store.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending after MarkSyncError = %d entries, want 1", len(pending))
	}
}

func TestSQLiteStore_GetEntryNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetEntry(context.Background(), core.NewDate(2025, 2, 1))
	if !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("GetEntry error = %v, want ErrEntryNotFound", err)
	}
}
