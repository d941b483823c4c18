// Package bridge exposes the background-service capability endpoints the
// browser script reports to.
package bridge

import (
	"errors"
	"net/http"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// Module provides bridge routes.
type Module struct {
	deps module.Dependencies
}

// New returns a bridge module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "bridge" }

// Mount wires bridge route handlers.
func (m Module) Mount() (module.Mount, error) {
	if m.deps.Shell == nil {
		return module.Mount{}, errors.New("shell is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{Prefix: routepath.BridgePrefix, Handler: mux}, nil
}
