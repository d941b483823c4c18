package modules

import (
	"testing"

	"github.com/louisbranch/lifeos/internal/services/web/webtest"
)

func TestDefaultModulesMountInOrder(t *testing.T) {
	t.Parallel()

	all := Default(webtest.Dependencies(t))
	want := []string{"dashboard", "apps", "settings", "bridge", "events"}
	if len(all) != len(want) {
		t.Fatalf("module count = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if got := all[i].ID(); got != id {
			t.Fatalf("module[%d] id = %q, want %q", i, got, id)
		}
	}
}

func TestDefaultModulesHaveUniquePrefixes(t *testing.T) {
	t.Parallel()

	seen := map[string]string{}
	for _, m := range Default(webtest.Dependencies(t)) {
		mount, err := m.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", m.ID(), err)
		}
		if mount.Prefix == "" || mount.Handler == nil {
			t.Fatalf("module %q mount = %+v", m.ID(), mount)
		}
		if owner, ok := seen[mount.Prefix]; ok {
			t.Fatalf("module %q duplicates prefix %q owned by %q", m.ID(), mount.Prefix, owner)
		}
		seen[mount.Prefix] = m.ID()
	}
}

func TestClosersIncludeEventStream(t *testing.T) {
	t.Parallel()

	closers := Closers(Default(webtest.Dependencies(t)))
	if len(closers) != 1 {
		t.Fatalf("closers = %d, want 1", len(closers))
	}
	if err := closers[0].Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
