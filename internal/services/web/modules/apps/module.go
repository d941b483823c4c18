// Package apps serves the dedicated module apps that external-entry modules
// hand off to, and the entry mutations shared with in-shell modules.
package apps

import (
	"errors"
	"net/http"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// Module provides module app routes.
type Module struct {
	deps module.Dependencies
}

// New returns an apps module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "apps" }

// Mount wires app route handlers.
func (m Module) Mount() (module.Mount, error) {
	if m.deps.Shell == nil {
		return module.Mount{}, errors.New("shell is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{Prefix: routepath.AppsPrefix, Handler: mux}, nil
}
