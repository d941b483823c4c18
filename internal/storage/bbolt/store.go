// Package bbolt provides a BoltDB-backed storage substrate.
package bbolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/louisbranch/lifeos/internal/platform/timeouts"
	"github.com/louisbranch/lifeos/internal/storage"
	"go.etcd.io/bbolt"
)

const recordBucket = "records"

// Store provides a BoltDB-backed record substrate.
type Store struct {
	mu sync.RWMutex
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: timeouts.StoreOpen})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Load fetches the payload stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.view(ctx, func(bucket *bbolt.Bucket) error {
		value := bucket.Get([]byte(key))
		if value == nil {
			return storage.ErrNotFound
		}
		payload = bytes.Clone(value)
		return nil
	})
	return payload, err
}

// Save persists payload under key.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("record key is required")
	}
	return s.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Put([]byte(key), payload)
	})
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Delete([]byte(key))
	})
}

// List returns records whose key starts with prefix in key order.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.Record, error) {
	var records []storage.Record
	err := s.view(ctx, func(bucket *bbolt.Bucket) error {
		cursor := bucket.Cursor()
		p := []byte(prefix)
		for k, v := cursor.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = cursor.Next() {
			records = append(records, storage.Record{Key: string(k), Value: bytes.Clone(v)})
		}
		return nil
	})
	return records, err
}

// DeleteAll drops and recreates the record bucket.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(recordBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("delete record bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(recordBucket)); err != nil {
			return fmt.Errorf("create record bucket: %w", err)
		}
		return nil
	})
}

func (s *Store) view(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrClosed
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return fn(bucket)
	})
}

func (s *Store) update(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return storage.ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return fn(bucket)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(recordBucket)); err != nil {
			return fmt.Errorf("create record bucket: %w", err)
		}
		return nil
	})
}

var _ storage.Substrate = (*Store)(nil)
