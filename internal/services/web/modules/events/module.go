// Package events streams bus events to the browser over a websocket so
// widgets refresh when the store changes.
package events

import (
	"errors"
	"net/http"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// Module provides the event stream route.
type Module struct {
	deps module.Dependencies
	hub  *hub
}

// New returns an events module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps, hub: newHub(deps.Metrics, deps.Logger)}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "events" }

// Mount wires the event stream handler.
func (m Module) Mount() (module.Mount, error) {
	if m.deps.Shell == nil || m.deps.Shell.Bus == nil {
		return module.Mount{}, errors.New("event bus is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, m.hub, m.deps.Shell.Bus)
	return module.Mount{Prefix: routepath.EventsPrefix, Handler: mux}, nil
}

// Close disconnects every open stream.
func (m Module) Close() error {
	m.hub.closeAll()
	return nil
}
