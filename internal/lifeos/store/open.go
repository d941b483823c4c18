package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/lifeos/internal/storage"
	boltstore "github.com/louisbranch/lifeos/internal/storage/bbolt"
	"github.com/louisbranch/lifeos/internal/storage/memory"
	sqlitestore "github.com/louisbranch/lifeos/internal/storage/sqlite"
)

// Substrate drivers accepted by OpenSubstrate.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bbolt"
	DriverMemory = "memory"
)

// OpenSubstrate opens the substrate named by driver at path.
func OpenSubstrate(ctx context.Context, driver, path string) (storage.Substrate, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return sqlitestore.Open(ctx, path)
	case DriverBolt:
		return boltstore.Open(path)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
