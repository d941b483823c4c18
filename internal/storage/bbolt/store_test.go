package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/louisbranch/lifeos/internal/storage"
	"github.com/louisbranch/lifeos/internal/storage/storagetest"
)

func TestSubstrateConformance(t *testing.T) {
	storagetest.RunSubstrateConformance(t, func(t *testing.T) storage.Substrate {
		store, err := Open(filepath.Join(t.TempDir(), "lifeos.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path to fail")
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "lifeos.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}
