package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/platform/timeouts"
	"github.com/louisbranch/lifeos/internal/services/web/app"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/modules"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/platform/observability"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
	"github.com/louisbranch/lifeos/internal/services/web/static"
	"go.uber.org/zap"
)

// Config defines the inputs for the web server.
type Config struct {
	// Addr is the host:port the server binds.
	Addr         string
	Dependencies module.Dependencies
}

// Server hosts the LifeOS HTTP server.
type Server struct {
	addr       string
	httpServer *http.Server
	closers    []io.Closer
	logger     *zap.Logger

	mu    sync.Mutex
	bound net.Addr
}

// NewServer composes every web module behind the shared middleware chain.
func NewServer(config Config) (*Server, error) {
	if config.Dependencies.Shell == nil {
		return nil, errors.New("shell is required")
	}
	logger := logging.OrNop(config.Dependencies.Logger)
	config.Dependencies.Logger = logger

	features := modules.Default(config.Dependencies)
	handler, err := NewHandler(config.Dependencies, features)
	if err != nil {
		return nil, err
	}
	s := &Server{
		addr:    config.Addr,
		closers: modules.Closers(features),
		logger:  logger.Named("web"),
	}
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
		ErrorLog:          zap.NewStdLog(s.logger),
	}
	s.httpServer.RegisterOnShutdown(s.closeStreams)
	return s, nil
}

// NewHandler builds the root handler for the given modules.
func NewHandler(deps module.Dependencies, features []module.Module) (http.Handler, error) {
	logger := logging.OrNop(deps.Logger)
	root, err := app.Compose(app.ComposeInput{
		Modules: features,
		Routes: map[string]http.Handler{
			routepath.Health:        http.HandlerFunc(handleHealth),
			routepath.Metrics:       deps.Metrics.Handler(),
			routepath.ServiceWorker: assetHandler(static.ServiceWorkerFile, "text/javascript; charset=utf-8", true),
			routepath.Manifest:      assetHandler(static.ManifestFile, "application/manifest+json", false),
			routepath.StaticPrefix:  http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compose web modules: %w", err)
	}
	return httpx.Chain(root,
		httpx.RequestID(),
		httpx.RecoverPanic(logger),
		observability.RequestLogger(logger, deps.Metrics),
	), nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.httpServer.Handler
}

// Addr returns the bound listener address once serving, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound != nil {
		return s.bound.String()
	}
	return s.addr
}

// ListenAndServe binds the configured address and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	s.logger.Info("web listening", zap.String("addr", ln.Addr().String()))
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// closeStreams ends hijacked connections that Shutdown does not track.
func (s *Server) closeStreams() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("close stream", zap.Error(err))
		}
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// assetHandler serves one embedded file from the site root. The service
// worker must be served from "/" to control every page.
func assetHandler(name, contentType string, serviceWorker bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httpx.MethodNotAllowed(http.MethodGet)(w, r)
			return
		}
		body, err := static.FS.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		if serviceWorker {
			w.Header().Set("Service-Worker-Allowed", "/")
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
}
