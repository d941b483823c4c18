package registry

import (
	"fmt"
	"strings"
	"sync"
)

// Widgets is the widget registry.
type Widgets struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]WidgetDescriptor
	frozen bool
}

// NewWidgets returns an empty widget registry.
func NewWidgets() *Widgets {
	return &Widgets{byID: make(map[string]WidgetDescriptor)}
}

// Register adds desc. Owner existence is checked by the dashboard, which
// sees both registries.
func (r *Widgets) Register(desc WidgetDescriptor) error {
	desc.ID = strings.TrimSpace(desc.ID)
	switch {
	case desc.ID == "":
		return fmt.Errorf("%w: widget id is required", ErrInvalidDescriptor)
	case strings.TrimSpace(desc.ModuleID) == "":
		return fmt.Errorf("%w: widget %q owner is required", ErrInvalidDescriptor, desc.ID)
	case desc.Render == nil:
		return fmt.Errorf("%w: widget %q renderer is required", ErrInvalidDescriptor, desc.ID)
	}
	if desc.Refresh == "" {
		desc.Refresh = RefreshOnDemand
	}
	if desc.Refresh != RefreshOnDemand && desc.Refresh != RefreshOnStoreChange {
		return fmt.Errorf("%w: widget %q refresh %q", ErrInvalidDescriptor, desc.ID, desc.Refresh)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: register %q", ErrRegistryFrozen, desc.ID)
	}
	if _, ok := r.byID[desc.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateWidget, desc.ID)
	}
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	return nil
}

// Resolve returns the widget with id.
func (r *Widgets) Resolve(id string) (WidgetDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byID[id]
	return desc, ok
}

// List returns widgets in registration order.
func (r *Widgets) List() []WidgetDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WidgetDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ForModule returns the widgets owned by moduleID.
func (r *Widgets) ForModule(moduleID string) []WidgetDescriptor {
	var out []WidgetDescriptor
	for _, desc := range r.List() {
		if desc.ModuleID == moduleID {
			out = append(out, desc)
		}
	}
	return out
}

// Freeze rejects further registrations.
func (r *Widgets) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}
