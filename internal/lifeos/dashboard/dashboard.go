// Package dashboard composes the navigation and the widget grid of the shell.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/louisbranch/lifeos/internal/lifeos/navigation"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrNoModules indicates a dashboard built over an empty module registry.
	ErrNoModules = errors.New("dashboard requires at least one module")
	// ErrNoWidgets indicates a dashboard built over an empty widget registry.
	ErrNoWidgets = errors.New("dashboard requires at least one widget")
	// ErrUnknownOwner indicates a widget owned by an unregistered module.
	ErrUnknownOwner = errors.New("widget owner is not a registered module")
	// ErrWidgetNotFound indicates an unknown widget id.
	ErrWidgetNotFound = errors.New("widget not found")
)

// PlaceholderText is shown in place of a widget that failed to render.
const PlaceholderText = "This widget is unavailable right now."

// Recorder receives widget render outcomes.
type Recorder interface {
	WidgetRender(widget, outcome string)
}

// Config wires a Dashboard.
type Config struct {
	Modules    *registry.Modules
	Widgets    *registry.Widgets
	Controller *navigation.Controller
	Recorder   Recorder
	Logger     *zap.Logger
}

// NavEntry is one navigation item.
type NavEntry struct {
	ID       string
	Label    string
	Icon     string
	Summary  string
	External bool
	Active   bool
}

// WidgetResult is one rendered widget, or its placeholder.
type WidgetResult struct {
	Widget registry.WidgetDescriptor
	View   registry.WidgetView
	// Failed marks a placeholder produced after an error or panic.
	Failed bool
}

// Dashboard renders the shell's navigation and widgets.
type Dashboard struct {
	modules    *registry.Modules
	widgets    *registry.Widgets
	controller *navigation.Controller
	recorder   Recorder
	logger     *zap.Logger
	tracer     trace.Tracer
}

// New validates the registries and returns a dashboard. Configuration errors
// are reported here so they surface at startup.
func New(cfg Config) (*Dashboard, error) {
	if cfg.Modules == nil || cfg.Modules.Len() == 0 {
		return nil, ErrNoModules
	}
	if cfg.Widgets == nil || len(cfg.Widgets.List()) == 0 {
		return nil, ErrNoWidgets
	}
	if cfg.Controller == nil {
		return nil, errors.New("navigation controller is required")
	}
	for _, w := range cfg.Widgets.List() {
		if _, ok := cfg.Modules.Resolve(w.ModuleID); !ok {
			return nil, fmt.Errorf("%w: widget %q owner %q", ErrUnknownOwner, w.ID, w.ModuleID)
		}
	}
	return &Dashboard{
		modules:    cfg.Modules,
		widgets:    cfg.Widgets,
		controller: cfg.Controller,
		recorder:   cfg.Recorder,
		logger:     logging.OrNop(cfg.Logger).Named("dashboard"),
		tracer:     otel.Tracer("github.com/louisbranch/lifeos/internal/lifeos/dashboard"),
	}, nil
}

// Controller returns the navigation controller.
func (d *Dashboard) Controller() *navigation.Controller {
	return d.controller
}

// Modules returns the module registry.
func (d *Dashboard) Modules() *registry.Modules {
	return d.modules
}

// Nav returns the navigation entries with the active marking for state.
func (d *Dashboard) Nav(state navigation.State) []NavEntry {
	descs := d.modules.List()
	entries := make([]NavEntry, 0, len(descs))
	for _, desc := range descs {
		entries = append(entries, NavEntry{
			ID:       desc.ID,
			Label:    desc.Label,
			Icon:     desc.Icon,
			Summary:  desc.Summary,
			External: desc.External(),
			Active:   desc.ID == state.ModuleID,
		})
	}
	return entries
}

// Activate switches the active module.
func (d *Dashboard) Activate(ctx context.Context, id string) (navigation.Transition, error) {
	return d.controller.Activate(ctx, id)
}

// RenderWidgets renders every widget. A failing widget yields a placeholder
// and never prevents its siblings from rendering.
func (d *Dashboard) RenderWidgets(ctx context.Context) []WidgetResult {
	widgets := d.widgets.List()
	results := make([]WidgetResult, 0, len(widgets))
	for _, w := range widgets {
		results = append(results, d.render(ctx, w))
	}
	return results
}

// RenderWidget renders one widget by id.
func (d *Dashboard) RenderWidget(ctx context.Context, id string) (WidgetResult, error) {
	w, ok := d.widgets.Resolve(id)
	if !ok {
		return WidgetResult{}, fmt.Errorf("%w: %q", ErrWidgetNotFound, id)
	}
	return d.render(ctx, w), nil
}

func (d *Dashboard) render(ctx context.Context, w registry.WidgetDescriptor) (result WidgetResult) {
	ctx, span := d.tracer.Start(ctx, "dashboard.widget", trace.WithAttributes(attribute.String("lifeos.widget", w.ID)))
	defer span.End()

	result.Widget = w
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("widget panicked",
				zap.String("widget", w.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result = placeholder(w)
			d.record(w.ID, "panic")
		}
	}()

	view, err := w.Render(ctx)
	if err != nil {
		d.logger.Warn("widget render failed", zap.String("widget", w.ID), zap.Error(err))
		span.RecordError(err)
		d.record(w.ID, "error")
		return placeholder(w)
	}
	d.record(w.ID, "ok")
	result.View = view
	return result
}

func (d *Dashboard) record(widget, outcome string) {
	if d.recorder != nil {
		d.recorder.WidgetRender(widget, outcome)
	}
}

func placeholder(w registry.WidgetDescriptor) WidgetResult {
	return WidgetResult{
		Widget: w,
		View:   registry.WidgetView{Detail: PlaceholderText, Empty: true},
		Failed: true,
	}
}
