package dashboard

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.ModulePattern, h.handleActivate)
	mux.HandleFunc(http.MethodPost+" "+routepath.ModuleDeactivate, h.handleDeactivate)
	mux.HandleFunc(http.MethodPost+" "+routepath.ModuleOpenPattern, h.handleOpen)
	mux.HandleFunc(http.MethodGet+" "+routepath.WidgetPattern, h.handleWidget)
	mux.HandleFunc(routepath.Root, h.handleNotFound)
}
