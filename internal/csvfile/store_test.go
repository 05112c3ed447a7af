package csvfile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"balancebot/internal/core"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "balance_data.csv")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, path
}

func entryWithBalance(date core.Date, balanceCents int64) core.Entry {
	return core.Entry{
		Date:      date,
		DayOfWeek: core.WeekdayLabel(date),
		Price:     core.Money{Cents: 2000},
		Balance:   core.Money{Cents: balanceCents},
	}
}

func TestStore_CumulativeBalances(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2025, 1, 30),
		core.NewDate(2025, 1, 31),
		core.NewDate(2025, 2, 1),
	}
	for i, d := range dates {
		if err := store.Insert(ctx, entryWithBalance(d, int64(i+1)*2000)); err != nil {
			t.Fatalf("insert %v: %v", d, err)
		}
	}

	entries, err := store.List(ctx, core.Period{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Nth chronological entry carries N times the price.
	for i, e := range entries {
		want := int64(i+1) * 2000
		if e.Balance.Cents != want {
			t.Errorf("entry %d balance = %d, want %d", i, e.Balance.Cents, want)
		}
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	d := core.NewDate(2025, 2, 1)
	if err := store.Insert(ctx, entryWithBalance(d, 2000)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries, err := reopened.List(ctx, core.Period{})
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Date.String() != "2025-02-01" || got.DayOfWeek != "Суббота" || got.Price.Cents != 2000 {
		t.Errorf("reloaded entry = %+v", got)
	}
}

func TestStore_InsertDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	d := core.NewDate(2025, 2, 1)

	if err := store.Insert(ctx, entryWithBalance(d, 2000)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := store.Insert(ctx, entryWithBalance(d, 4000))
	if !errors.Is(err, core.ErrDuplicateDate) {
		t.Fatalf("duplicate insert error = %v, want ErrDuplicateDate", err)
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Delete(context.Background(), core.NewDate(2025, 2, 1))
	if !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("Delete error = %v, want ErrEntryNotFound", err)
	}
}

func TestStore_DeleteThenReAdd(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	d := core.NewDate(2025, 2, 1)

	if err := store.Insert(ctx, entryWithBalance(d, 2000)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Delete(ctx, d); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Insert(ctx, entryWithBalance(d, 2000)); err != nil {
		t.Fatalf("re-add: %v", err)
	}
}

func TestStore_MonthWindow(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2024, 2, 15),
		core.NewDate(2025, 1, 31),
		core.NewDate(2025, 2, 1),
		core.NewDate(2025, 2, 2),
	} {
		if err := store.Insert(ctx, entryWithBalance(d, 0)); err != nil {
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
	// 2024-02 is its own partition; 2025-02 accumulates separately.
	wantBalances := []int64{2000, 2000, 4000}
	for i, e := range entries {
		if e.Balance.Cents != wantBalances[i] {
			t.Errorf("entry %d (%v) balance = %d, want %d", i, e.Date, e.Balance.Cents, wantBalances[i])
		}
	}
}

func TestStore_ListInvalidMonth(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.List(context.Background(), core.Period{Month: 13})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("List(month=13) error = %v, want ErrInvalidMonth", err)
	}
}

func TestStore_Last(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	last, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last != nil {
		t.Fatalf("Last on empty store = %+v, want nil", last)
	}

	if err := store.Insert(ctx, entryWithBalance(core.NewDate(2025, 2, 2), 4000)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, entryWithBalance(core.NewDate(2025, 2, 1), 2000)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	last, err = store.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	// Chronological order, not insert order.
	if last == nil || last.Date.String() != "2025-02-02" {
		t.Fatalf("Last = %+v, want entry for 2025-02-02", last)
	}
	if last.Balance.Cents != 4000 {
		t.Errorf("Last stored balance = %d, want 4000", last.Balance.Cents)
	}
}
