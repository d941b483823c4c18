package apps

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AppPattern, h.handleApp)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppEntriesPattern, h.handleAdd)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTogglePattern, h.handleToggle)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppDeletePattern, h.handleDelete)
	mux.HandleFunc(routepath.AppEntriesPattern, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(routepath.AppsPrefix, h.handleNotFound)
}
