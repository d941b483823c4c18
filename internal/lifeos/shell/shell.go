// Package shell assembles the LifeOS core from a catalog and a storage
// substrate: event bus, store adapter, registries, module books, navigation
// controller, background services bridge and dashboard.
package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/bridge"
	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"github.com/louisbranch/lifeos/internal/lifeos/dashboard"
	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/lifeos/navigation"
	"github.com/louisbranch/lifeos/internal/lifeos/records"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/platform/metrics"
	"github.com/louisbranch/lifeos/internal/storage"
	"go.uber.org/zap"
)

// Config wires a Shell.
type Config struct {
	Catalog   catalog.Catalog
	Substrate storage.Substrate
	// Quota caps store bytes; see store.Options.
	Quota int64
	// AppURL returns the dedicated app URL of an external module.
	AppURL        func(moduleID string) string
	PublicURL     string
	ReminderPoll  time.Duration
	ScriptPresent func() bool
	Formatter     records.Formatter
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
}

// Shell is the assembled LifeOS core.
type Shell struct {
	Catalog    catalog.Catalog
	Bus        *events.Bus
	Store      *store.Adapter
	Modules    *registry.Modules
	Widgets    *registry.Widgets
	Controller *navigation.Controller
	Bridge     *bridge.Bridge
	Dashboard  *dashboard.Dashboard
	Formatter  records.Formatter

	books  map[string]*records.Book
	logger *zap.Logger
}

// DefaultAppURL is the dedicated app location used when Config.AppURL is nil.
func DefaultAppURL(moduleID string) string {
	return "/apps/" + moduleID + "/"
}

// Assemble builds the core. Any catalog or registration problem is returned
// as a configuration error.
func Assemble(cfg Config) (*Shell, error) {
	if cfg.Substrate == nil {
		return nil, errors.New("storage substrate is required")
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrNop(cfg.Logger)
	appURL := cfg.AppURL
	if appURL == nil {
		appURL = DefaultAppURL
	}

	busOpts := []events.Option{events.WithObserver(cfg.Metrics)}
	if cfg.Clock != nil {
		busOpts = append(busOpts, events.WithClock(cfg.Clock))
	}
	bus := events.NewBus(busOpts...)

	adapter, err := store.New(cfg.Substrate, store.Options{
		Quota:     cfg.Quota,
		Publisher: bus,
		Recorder:  cfg.Metrics,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Shell{
		Catalog:   cfg.Catalog,
		Bus:       bus,
		Store:     adapter,
		Modules:   registry.NewModules(),
		Widgets:   registry.NewWidgets(),
		Formatter: cfg.Formatter,
		books:     make(map[string]*records.Book, len(cfg.Catalog.Modules)),
		logger:    logger,
	}

	var bookOpts []records.Option
	if cfg.Clock != nil {
		bookOpts = append(bookOpts, records.WithClock(cfg.Clock))
	}
	moduleIDs := make([]string, 0, len(cfg.Catalog.Modules))
	for _, m := range cfg.Catalog.Modules {
		book := records.NewBook(adapter, m, bookOpts...)
		s.books[m.ID] = book
		moduleIDs = append(moduleIDs, m.ID)

		desc := registry.ModuleDescriptor{
			ID:          m.ID,
			Label:       m.Label,
			Icon:        m.Icon,
			Summary:     m.Summary,
			Description: m.Description,
			Render:      book.ContentFunc(cfg.Formatter),
		}
		if m.External {
			desc.ActionLabel = m.ActionLabel
			desc.ExternalURL = appURL(m.ID)
		}
		if err := s.Modules.Register(desc); err != nil {
			return nil, fmt.Errorf("register module: %w", err)
		}
	}
	for _, w := range cfg.Catalog.Widgets {
		book, ok := s.books[w.Module]
		if !ok {
			return nil, fmt.Errorf("%w: widget %q owner %q", dashboard.ErrUnknownOwner, w.ID, w.Module)
		}
		render, err := book.Widget(w.Kind, cfg.Formatter)
		if err != nil {
			return nil, fmt.Errorf("widget %q: %w", w.ID, err)
		}
		if err := s.Widgets.Register(registry.WidgetDescriptor{
			ID:       w.ID,
			ModuleID: w.Module,
			Title:    w.Title,
			Kind:     w.Kind,
			Refresh:  registry.RefreshPolicy(w.Refresh),
			Render:   render,
		}); err != nil {
			return nil, fmt.Errorf("register widget: %w", err)
		}
	}
	s.Modules.Freeze()
	s.Widgets.Freeze()

	s.Controller, err = navigation.NewController(s.Modules, adapter, navigation.Options{
		Publisher: bus,
		Recorder:  cfg.Metrics,
		Logger:    logger,
		Clock:     cfg.Clock,
	})
	if err != nil {
		return nil, err
	}
	s.Bridge, err = bridge.New(adapter, bridge.Options{
		PublicURL:     cfg.PublicURL,
		ScriptPresent: cfg.ScriptPresent,
		Modules:       moduleIDs,
		PollInterval:  cfg.ReminderPoll,
		Publisher:     bus,
		Recorder:      cfg.Metrics,
		Logger:        logger,
		Clock:         cfg.Clock,
	})
	if err != nil {
		return nil, err
	}
	s.Dashboard, err = dashboard.New(dashboard.Config{
		Modules:    s.Modules,
		Widgets:    s.Widgets,
		Controller: s.Controller,
		Recorder:   cfg.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Book returns the entry book of module id.
func (s *Shell) Book(id string) (*records.Book, bool) {
	book, ok := s.books[id]
	return book, ok
}

// Start starts background services and restores the last in-shell module.
// Neither step can fail startup.
func (s *Shell) Start(ctx context.Context) {
	s.Bridge.Start(ctx)
	transition, restored, err := s.Controller.Restore(ctx)
	switch {
	case err != nil:
		s.logger.Warn("restore active module", zap.Error(err))
	case restored:
		s.logger.Info("restored active module", zap.String("module", transition.State.ModuleID))
	}
}

// Close waits for background services and closes the store. The context
// given to Start must be canceled first.
func (s *Shell) Close() error {
	s.Bridge.Wait()
	return s.Store.Close()
}
