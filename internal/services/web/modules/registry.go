// Package modules defines web module registry helpers.
package modules

import (
	"io"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/modules/apps"
	"github.com/louisbranch/lifeos/internal/services/web/modules/bridge"
	"github.com/louisbranch/lifeos/internal/services/web/modules/dashboard"
	"github.com/louisbranch/lifeos/internal/services/web/modules/events"
	"github.com/louisbranch/lifeos/internal/services/web/modules/settings"
)

// Module aliases the module interface contract.
type Module = module.Module

// Default returns every web module served by the shell, in mount order.
func Default(deps module.Dependencies) []Module {
	return []Module{
		dashboard.New(deps),
		apps.New(deps),
		settings.New(deps),
		bridge.New(deps),
		events.New(deps),
	}
}

// Closers returns the modules holding connections that outlive a request.
func Closers(all []Module) []io.Closer {
	var closers []io.Closer
	for _, m := range all {
		if c, ok := m.(io.Closer); ok {
			closers = append(closers, c)
		}
	}
	return closers
}
