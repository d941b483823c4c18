// Package catalog loads the declarative description of LifeOS modules and
// widgets. The embedded catalog.yaml is used unless an override file is given.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Amount units understood by module records.
const (
	UnitCurrency = "currency"
	UnitMinutes  = "minutes"
	UnitCount    = "count"
)

// Widget refresh policies.
const (
	RefreshOnDemand      = "on-demand"
	RefreshOnStoreChange = "on-store-change"
)

// Amount describes an optional numeric column on module entries.
type Amount struct {
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`
}

// Module is one navigable module.
type Module struct {
	ID          string  `yaml:"id"`
	Label       string  `yaml:"label"`
	Icon        string  `yaml:"icon"`
	Summary     string  `yaml:"summary"`
	Description string  `yaml:"description"`
	ActionLabel string  `yaml:"action_label"`
	External    bool    `yaml:"external"`
	EntryNoun   string  `yaml:"entry_noun"`
	Amount      *Amount `yaml:"amount"`
}

// Widget is one dashboard widget.
type Widget struct {
	ID      string `yaml:"id"`
	Module  string `yaml:"module"`
	Title   string `yaml:"title"`
	Kind    string `yaml:"kind"`
	Refresh string `yaml:"refresh"`
}

// Catalog is the full declarative configuration.
type Catalog struct {
	Modules []Module `yaml:"modules"`
	Widgets []Widget `yaml:"widgets"`
}

// Default returns the embedded catalog.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Module returns the module with id.
func (c Catalog) Module(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Validate reports the first configuration problem found.
func (c Catalog) Validate() error {
	if len(c.Modules) == 0 {
		return fmt.Errorf("%w: no modules", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c.Modules))
	for i, m := range c.Modules {
		switch {
		case m.ID == "":
			return fmt.Errorf("%w: module %d has no id", ErrInvalidCatalog, i)
		case !store.ValidNamespace(m.ID):
			return fmt.Errorf("%w: module id %q is not a valid storage namespace", ErrInvalidCatalog, m.ID)
		case m.ID == store.ShellNamespace:
			return fmt.Errorf("%w: module id %q is reserved", ErrInvalidCatalog, m.ID)
		case seen[m.ID]:
			return fmt.Errorf("%w: duplicate module %q", ErrInvalidCatalog, m.ID)
		case m.Label == "":
			return fmt.Errorf("%w: module %q has no label", ErrInvalidCatalog, m.ID)
		case m.External && m.ActionLabel == "":
			return fmt.Errorf("%w: external module %q has no action label", ErrInvalidCatalog, m.ID)
		}
		if m.Amount != nil {
			switch m.Amount.Unit {
			case UnitCurrency, UnitMinutes, UnitCount:
			default:
				return fmt.Errorf("%w: module %q has unknown amount unit %q", ErrInvalidCatalog, m.ID, m.Amount.Unit)
			}
		}
		seen[m.ID] = true
	}

	widgets := make(map[string]bool, len(c.Widgets))
	for i, w := range c.Widgets {
		switch {
		case w.ID == "":
			return fmt.Errorf("%w: widget %d has no id", ErrInvalidCatalog, i)
		case widgets[w.ID]:
			return fmt.Errorf("%w: duplicate widget %q", ErrInvalidCatalog, w.ID)
		case !seen[w.Module]:
			return fmt.Errorf("%w: widget %q belongs to unknown module %q", ErrInvalidCatalog, w.ID, w.Module)
		case w.Refresh != RefreshOnDemand && w.Refresh != RefreshOnStoreChange:
			return fmt.Errorf("%w: widget %q has unknown refresh %q", ErrInvalidCatalog, w.ID, w.Refresh)
		}
		widgets[w.ID] = true
	}
	return nil
}

func (c *Catalog) normalize() {
	for i := range c.Modules {
		m := &c.Modules[i]
		m.ID = strings.TrimSpace(m.ID)
		m.Label = strings.TrimSpace(m.Label)
		m.ActionLabel = strings.TrimSpace(m.ActionLabel)
		if m.Summary == "" {
			m.Summary = m.Label
		}
		if m.EntryNoun == "" {
			m.EntryNoun = "entry"
		}
	}
	for i := range c.Widgets {
		w := &c.Widgets[i]
		w.ID = strings.TrimSpace(w.ID)
		w.Module = strings.TrimSpace(w.Module)
		if w.Kind == "" {
			w.Kind = w.ID
		}
		if w.Refresh == "" {
			w.Refresh = RefreshOnDemand
		}
	}
}
