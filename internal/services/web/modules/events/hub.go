package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lifeosevents "github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/platform/metrics"
	"github.com/louisbranch/lifeos/internal/platform/timeouts"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// TopicStreamReady is the first frame of every stream. Its seq is the last
// event published before the subscription started.
const TopicStreamReady lifeosevents.Topic = "stream.ready"

// peerBuffer is how many frames may queue for a slow client before later
// events are dropped for it.
const peerBuffer = 64

type hub struct {
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu    sync.Mutex
	peers map[*websocket.Conn]struct{}
}

func newHub(m *metrics.Metrics, logger *zap.Logger) *hub {
	return &hub{
		metrics: m,
		logger:  logging.OrNop(logger).Named("web.events"),
		peers:   make(map[*websocket.Conn]struct{}),
	}
}

// serve forwards every bus event to conn until the client disconnects.
// The bus handler only enqueues; it never writes to the socket or publishes.
func (h *hub) serve(conn *websocket.Conn, bus *lifeosevents.Bus) {
	h.add(conn)
	h.metrics.StreamOpened()
	defer func() {
		h.remove(conn)
		_ = conn.Close()
		h.metrics.StreamClosed()
	}()

	queue := make(chan lifeosevents.Event, peerBuffer)
	var dropped atomic.Int64
	unsubscribe := bus.SubscribeAll(func(_ context.Context, evt lifeosevents.Event) {
		select {
		case queue <- evt:
		default:
			dropped.Add(1)
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn, lifeosevents.Event{Seq: bus.Seq(), Topic: TopicStreamReady, At: time.Now().UTC()}); err != nil {
		return
	}
	for {
		select {
		case <-done:
			if n := dropped.Load(); n > 0 {
				h.logger.Warn("slow event stream dropped events", zap.Int64("dropped", n))
			}
			return
		case evt := <-queue:
			if err := h.send(conn, evt); err != nil {
				h.logger.Debug("event stream write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *hub) send(conn *websocket.Conn, evt lifeosevents.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
	return websocket.JSON.Send(conn, evt)
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.peers[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.peers, conn)
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// closeAll closes every connection; each serve loop then exits through its
// reader goroutine.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.peers {
		_ = conn.Close()
	}
}
