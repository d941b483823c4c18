// Package registry holds the module and widget registries consulted by the
// navigation controller and the dashboard shell.
package registry

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateModule indicates a module id is already registered.
	ErrDuplicateModule = errors.New("module already registered")
	// ErrDuplicateWidget indicates a widget id is already registered.
	ErrDuplicateWidget = errors.New("widget already registered")
	// ErrInvalidDescriptor indicates a descriptor is missing required fields.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	// ErrRegistryFrozen indicates a registration after startup completed.
	ErrRegistryFrozen = errors.New("registry is frozen")
)

// Stat is one labelled figure shown in module content.
type Stat struct {
	Label string
	Value string
}

// Item is one entry listed in module content.
type Item struct {
	ID     string
	Text   string
	Detail string
	Done   bool
}

// Content is the view model rendered into the module content region.
type Content struct {
	Summary     string
	Description string
	Stats       []Stat
	Items       []Item
	// Editable enables the in-shell entry form and item controls.
	Editable    bool
	EntryNoun   string
	AmountLabel string
}

// ContentFunc renders a module's content from its persisted state.
type ContentFunc func(ctx context.Context) (Content, error)

// ModuleDescriptor describes a navigable module. It is immutable once
// registered.
type ModuleDescriptor struct {
	ID          string
	Label       string
	Icon        string
	Summary     string
	Description string
	// ActionLabel and ExternalURL are set for external-entry modules.
	ActionLabel string
	ExternalURL string
	Render      ContentFunc
}

// External reports whether the module hands off to a dedicated app.
func (d ModuleDescriptor) External() bool {
	return d.ExternalURL != ""
}

// Fallback is the content shown when Render fails.
func (d ModuleDescriptor) Fallback() Content {
	return Content{Summary: d.Summary, Description: d.Description}
}

// RefreshPolicy controls when a widget is re-rendered.
type RefreshPolicy string

const (
	RefreshOnDemand      RefreshPolicy = "on-demand"
	RefreshOnStoreChange RefreshPolicy = "on-store-change"
)

// WidgetView is the rendered state of a widget.
type WidgetView struct {
	Headline string
	Detail   string
	Lines    []string
	Empty    bool
}

// WidgetFunc renders a widget.
type WidgetFunc func(ctx context.Context) (WidgetView, error)

// WidgetDescriptor describes a dashboard widget. ModuleID is a lookup key
// into the module registry, never a reference to module state.
type WidgetDescriptor struct {
	ID       string
	ModuleID string
	Title    string
	Kind     string
	Refresh  RefreshPolicy
	Render   WidgetFunc
}
