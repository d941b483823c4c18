package events

import (
	"net/http"

	lifeosevents "github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
	"golang.org/x/net/websocket"
)

func registerRoutes(mux *http.ServeMux, h *hub, bus *lifeosevents.Bus) {
	if mux == nil {
		return
	}
	stream := websocket.Handler(func(conn *websocket.Conn) {
		h.serve(conn, bus)
	})
	mux.Handle(http.MethodGet+" "+routepath.Events, stream)
	mux.HandleFunc(routepath.Events, httpx.MethodNotAllowed(http.MethodGet))
	mux.HandleFunc(routepath.EventsPrefix, http.NotFound)
}
