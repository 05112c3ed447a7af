package memory

import (
	"context"
	"fmt"
	"sync"

	"balancebot/internal/core"
)

// Store is an in-process mirror used in tests and local development when
// no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []core.Entry
}

func New() *Store {
	return &Store{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Remove drops the entry for the date, if present.
func (s *Store) Remove(_ context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.Date.String() == date.String() {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Entries returns a copy of the mirrored rows in append order.
func (s *Store) Entries() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.items...)
}
