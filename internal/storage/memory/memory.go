package memory

import (
	"context"
	"errors"
	"sync"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// ErrInjected is returned by Append while FailAppends is set.
var ErrInjected = errors.New("memory store: injected append failure")

// Store keeps records in process memory. Nothing survives a restart.
type Store struct {
	mu          sync.Mutex
	items       []storage.Record
	failAppends bool
	readErr     error
}

var _ storage.Store = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	s := &Store{}
	for _, t := range seed {
		s.items = append(s.items, storage.Record{Line: len(s.items) + 1, Transaction: t})
	}
	return s
}

// NewWithRecords seeds raw records, including broken ones.
func NewWithRecords(records ...storage.Record) *Store {
	return &Store{items: append([]storage.Record(nil), records...)}
}

// FailAppends makes subsequent Append calls fail until reset.
func (s *Store) FailAppends(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAppends = fail
}

// FailReads makes ReadAll return err until reset with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Append stores the transaction.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppends {
		return ErrInjected
	}
	s.items = append(s.items, storage.Record{Line: len(s.items) + 1, Transaction: t})
	return nil
}

// ReadAll returns a copy of the stored records.
func (s *Store) ReadAll(_ context.Context) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return append([]storage.Record(nil), s.items...), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
