// Package sqlite provides a SQLite-backed storage substrate.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sqlitemigrate "github.com/louisbranch/lifeos/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/lifeos/internal/storage"
	"github.com/louisbranch/lifeos/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists records in SQLite.
type Store struct {
	mu    sync.RWMutex
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite record store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}

// Load returns the payload stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", key, err)
	}
	return payload, nil
}

// Save upserts payload under key.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("record key is required")
	}
	db, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if payload == nil {
		payload = []byte{}
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO records (key, namespace, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key,
		namespaceOf(key),
		payload,
		toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

// List returns records whose key starts with prefix ordered by key.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.Record, error) {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM records WHERE substr(key, 1, length(?)) = ? ORDER BY key`,
		prefix, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		var record storage.Record
		if err := rows.Scan(&record.Key, &record.Value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// DeleteAll removes every record.
func (s *Store) DeleteAll(ctx context.Context) error {
	db, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) (*sql.DB, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, fmt.Errorf("storage is not configured")
	}
	s.mu.RLock()
	if s.sqlDB == nil {
		s.mu.RUnlock()
		return nil, nil, storage.ErrClosed
	}
	return s.sqlDB, s.mu.RUnlock, nil
}

func namespaceOf(key string) string {
	namespace, _, _ := strings.Cut(key, ".")
	return namespace
}

var _ storage.Substrate = (*Store)(nil)
