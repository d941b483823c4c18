package store

import (
	"context"
	"strings"
)

// Namespace is a view of the adapter scoped to one module's keys.
type Namespace struct {
	adapter *Adapter
	id      string
}

// Namespace returns the scoped view for a module id.
func (a *Adapter) Namespace(id string) Namespace {
	return Namespace{adapter: a, id: id}
}

// ID returns the namespace identifier.
func (n Namespace) ID() string {
	return n.id
}

// Key returns the full key for field.
func (n Namespace) Key(field string) string {
	return Key(n.id, field)
}

// Get reads field.
func (n Namespace) Get(ctx context.Context, field string) (Value, error) {
	return n.adapter.Get(ctx, n.Key(field))
}

// Set writes field.
func (n Namespace) Set(ctx context.Context, field string, value any) error {
	return n.adapter.Set(ctx, n.Key(field), value)
}

// Update read-modify-writes field.
func (n Namespace) Update(ctx context.Context, field string, fn func(current Value) (any, error)) error {
	return n.adapter.Update(ctx, n.Key(field), fn)
}

// Remove deletes field.
func (n Namespace) Remove(ctx context.Context, field string) error {
	return n.adapter.Remove(ctx, n.Key(field))
}

// Fields lists the fields stored in the namespace.
func (n Namespace) Fields(ctx context.Context) ([]string, error) {
	keys, err := n.adapter.Keys(ctx, n.id)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, strings.TrimPrefix(key, n.id+"."))
	}
	return fields, nil
}
