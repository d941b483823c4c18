// Package memory provides an in-process storage substrate for tests and
// ephemeral sessions.
package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/louisbranch/lifeos/internal/storage"
)

// Store keeps records in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
	closed  bool
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Load returns a copy of the payload under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	payload, ok := s.records[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(payload), nil
}

// Save stores a copy of payload under key.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.records[key] = bytes.Clone(payload)
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	delete(s.records, key)
	return nil
}

// List returns records with the given key prefix sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	var records []storage.Record
	for key, payload := range s.records {
		if strings.HasPrefix(key, prefix) {
			records = append(records, storage.Record{Key: key, Value: bytes.Clone(payload)})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

// DeleteAll removes every record.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	clear(s.records)
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ storage.Substrate = (*Store)(nil)
