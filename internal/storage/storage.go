package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates a requested key is missing.
	ErrNotFound = errors.New("record not found")
	// ErrClosed indicates the substrate has been closed.
	ErrClosed = errors.New("storage is closed")
)

// Record is one stored key and its payload.
type Record struct {
	Key   string
	Value []byte
}

// Substrate persists opaque payloads by key.
type Substrate interface {
	// Load returns the payload for key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save writes payload under key, replacing any previous payload.
	Save(ctx context.Context, key string, payload []byte) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// List returns records whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Record, error)
	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}

// Size returns the byte footprint of records, counting keys and payloads.
func Size(records []Record) int64 {
	var total int64
	for _, record := range records {
		total += int64(len(record.Key) + len(record.Value))
	}
	return total
}
