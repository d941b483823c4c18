// Package dashboard serves the LifeOS shell: the dashboard page, in-page
// module switches, hand-offs and widget refreshes.
package dashboard

import (
	"errors"
	"net/http"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// Module provides the dashboard shell routes.
type Module struct {
	deps module.Dependencies
}

// New returns a dashboard module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "dashboard" }

// Mount wires dashboard route handlers.
func (m Module) Mount() (module.Mount, error) {
	if m.deps.Shell == nil {
		return module.Mount{}, errors.New("shell is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
