package settings

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Settings, h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.SettingsPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.SettingsClear, h.handleClear)
	mux.HandleFunc(http.MethodPost+" "+routepath.SettingsReminders, h.handleSchedule)
	mux.HandleFunc(routepath.SettingsClear, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(routepath.SettingsReminders, httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc(routepath.SettingsPrefix, h.handleNotFound)
}
