package registry

import (
	"fmt"
	"strings"
	"sync"
)

// Modules is the module registry. Registration order is navigation order.
type Modules struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]ModuleDescriptor
	frozen bool
}

// NewModules returns an empty module registry.
func NewModules() *Modules {
	return &Modules{byID: make(map[string]ModuleDescriptor)}
}

// Register adds desc. Ids are unique and fixed once Freeze is called.
func (r *Modules) Register(desc ModuleDescriptor) error {
	desc.ID = strings.TrimSpace(desc.ID)
	switch {
	case desc.ID == "":
		return fmt.Errorf("%w: module id is required", ErrInvalidDescriptor)
	case strings.TrimSpace(desc.Label) == "":
		return fmt.Errorf("%w: module %q label is required", ErrInvalidDescriptor, desc.ID)
	case desc.Render == nil:
		return fmt.Errorf("%w: module %q renderer is required", ErrInvalidDescriptor, desc.ID)
	case desc.ExternalURL != "" && strings.TrimSpace(desc.ActionLabel) == "":
		return fmt.Errorf("%w: external module %q action label is required", ErrInvalidDescriptor, desc.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: register %q", ErrRegistryFrozen, desc.ID)
	}
	if _, ok := r.byID[desc.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, desc.ID)
	}
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	return nil
}

// Resolve returns the descriptor for id.
func (r *Modules) Resolve(id string) (ModuleDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byID[id]
	return desc, ok
}

// List returns descriptors in registration order.
func (r *Modules) List() []ModuleDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModuleDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered modules.
func (r *Modules) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Freeze rejects further registrations.
func (r *Modules) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}
