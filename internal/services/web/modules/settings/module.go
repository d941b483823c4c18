// Package settings serves storage usage, the confirmed clear-all action,
// background capability status and reminder scheduling.
package settings

import (
	"errors"
	"net/http"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// Module provides settings routes.
type Module struct {
	deps module.Dependencies
}

// New returns a settings module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "settings" }

// Mount wires settings route handlers.
func (m Module) Mount() (module.Mount, error) {
	if m.deps.Shell == nil {
		return module.Mount{}, errors.New("shell is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{Prefix: routepath.SettingsPrefix, Handler: mux}, nil
}
