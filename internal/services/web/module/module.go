// Package module defines the feature contract used by web composition.
package module

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/lifeos/shell"
	"github.com/louisbranch/lifeos/internal/platform/metrics"
	"go.uber.org/zap"
)

// Dependencies carries the shared runtime seams handed to every module.
type Dependencies struct {
	Shell   *shell.Shell
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by web composition.
type Module interface {
	ID() string
	Mount() (Mount, error)
}
