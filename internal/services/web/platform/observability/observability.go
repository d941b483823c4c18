// Package observability provides request logging and metrics middleware.
package observability

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"go.uber.org/zap"
)

// Recorder receives per-request metrics.
type Recorder interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// RequestLogger logs method, path, status, bytes, latency and request id for
// each request and reports it to rec when set.
func RequestLogger(logger *zap.Logger, rec Recorder) httpx.Middleware {
	logger = logging.OrNop(logger).Named("http")
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			status := sw.statusCode()
			elapsed := time.Since(start)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", sw.bytes),
				zap.Duration("latency", elapsed),
				zap.String("request_id", httpx.RequestIDOf(r)),
			)
			if rec != nil {
				rec.ObserveRequest(r.Method, status, elapsed)
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack hands the connection to the websocket handler, recording the
// upgrade as 101.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(w.ResponseWriter).Hijack()
	if err == nil && w.status == 0 {
		w.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (w *statusWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
