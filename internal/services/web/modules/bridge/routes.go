package bridge

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.BridgeStatus, h.handleStatus)
	mux.HandleFunc(http.MethodPost+" "+routepath.BridgeSW, h.handleServiceWorker)
	mux.HandleFunc(http.MethodPost+" "+routepath.BridgeNotify, h.handleNotifications)
	mux.HandleFunc(routepath.BridgeStatus, httpx.MethodNotAllowed(http.MethodGet))
	mux.HandleFunc(routepath.BridgeSW, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(routepath.BridgeNotify, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(routepath.BridgePrefix, h.handleNotFound)
}
