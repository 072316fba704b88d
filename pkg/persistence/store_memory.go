package persistence

import (
	"sort"
	"sync"
	"time"

	"braces.dev/errtrace"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// MemoryStore is an in-memory implementation of the Store interface.
// This is primarily useful for testing and hosts that don't need persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

// NewMemoryStore creates a new in-memory timer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Save stores a copy of the record for key.
func (s *MemoryStore) Save(key string, remaining duration.Duration, now time.Time) error {
	if err := ValidateKey(key); err != nil {
		return errtrace.Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errtrace.Wrap(ErrClosed)
	}
	s.records[key] = *NewRecord(key, remaining, now)
	return nil
}

// Load returns a copy of the record for key, or nil, nil.
func (s *MemoryStore) Load(key string) (*Record, error) {
	if err := ValidateKey(key); err != nil {
		return nil, errtrace.Wrap(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errtrace.Wrap(ErrClosed)
	}
	r, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Delete removes the record for key.
func (s *MemoryStore) Delete(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, errtrace.Wrap(ErrClosed)
	}
	_, ok := s.records[key]
	delete(s.records, key)
	return ok, nil
}

// Exists reports whether a record exists for key.
func (s *MemoryStore) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, errtrace.Wrap(ErrClosed)
	}
	_, ok := s.records[key]
	return ok, nil
}

// Keys returns all stored keys in order.
func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errtrace.Wrap(ErrClosed)
	}
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)
