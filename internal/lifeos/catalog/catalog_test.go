package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	wantOrder := []string{"fitness", "todo", "finance", "investments", "habits", "goals", "journal", "poetry"}
	if len(c.Modules) != len(wantOrder) {
		t.Fatalf("modules = %d, want %d", len(c.Modules), len(wantOrder))
	}
	for i, id := range wantOrder {
		if c.Modules[i].ID != id {
			t.Fatalf("module %d = %q, want %q", i, c.Modules[i].ID, id)
		}
	}
	if len(c.Widgets) == 0 {
		t.Fatal("expected default widgets")
	}

	todo, ok := c.Module("todo")
	if !ok {
		t.Fatal("expected todo module")
	}
	if todo.Label != "To-Do List" || todo.Summary != "To-Do List Manager" || !todo.External {
		t.Fatalf("todo = %+v", todo)
	}
	habits, _ := c.Module("habits")
	if habits.External || habits.ActionLabel != "" {
		t.Fatalf("habits should be in-shell: %+v", habits)
	}
	finance, _ := c.Module("finance")
	if finance.Amount == nil || finance.Amount.Unit != UnitCurrency {
		t.Fatalf("finance amount = %+v", finance.Amount)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
modules:
  - id: notes
    label: Notes
widgets:
  - id: notes.latest
    module: notes
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Modules[0].Summary != "Notes" || c.Modules[0].EntryNoun != "entry" {
		t.Fatalf("module defaults = %+v", c.Modules[0])
	}
	if c.Widgets[0].Kind != "notes.latest" || c.Widgets[0].Refresh != RefreshOnDemand {
		t.Fatalf("widget defaults = %+v", c.Widgets[0])
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "syntax", yaml: "modules: ["},
		{name: "no modules", yaml: "modules: []"},
		{name: "missing id", yaml: "modules:\n  - label: X"},
		{name: "id with spaces", yaml: "modules:\n  - {id: To Do, label: To-Do}"},
		{name: "uppercase id", yaml: "modules:\n  - {id: Todo, label: To-Do}"},
		{name: "dotted id", yaml: "modules:\n  - {id: to.do, label: To-Do}"},
		{name: "reserved shell id", yaml: "modules:\n  - {id: shell, label: Shell}"},
		{name: "duplicate module", yaml: "modules:\n  - {id: a, label: A}\n  - {id: a, label: B}"},
		{name: "missing label", yaml: "modules:\n  - {id: a}"},
		{name: "external without action", yaml: "modules:\n  - {id: a, label: A, external: true}"},
		{name: "bad unit", yaml: "modules:\n  - {id: a, label: A, amount: {label: X, unit: parsecs}}"},
		{name: "unknown owner", yaml: "modules:\n  - {id: a, label: A}\nwidgets:\n  - {id: w, module: b}"},
		{name: "duplicate widget", yaml: "modules:\n  - {id: a, label: A}\nwidgets:\n  - {id: w, module: a}\n  - {id: w, module: a}"},
		{name: "bad refresh", yaml: "modules:\n  - {id: a, label: A}\nwidgets:\n  - {id: w, module: a, refresh: hourly}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("Parse() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestLoadOverrideFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("modules:\n  - {id: solo, label: Solo}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Modules) != 1 || c.Modules[0].ID != "solo" {
		t.Fatalf("modules = %+v", c.Modules)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing override to fail")
	}
	if c, err := Load(""); err != nil || len(c.Modules) != 8 {
		t.Fatalf("empty path should load default: %v", err)
	}
}
