package web

import (
	"context"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	lifeosevents "github.com/louisbranch/lifeos/internal/lifeos/events"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/static"
	"github.com/louisbranch/lifeos/internal/services/web/webtest"
	"golang.org/x/net/websocket"
)

func newTestServer(t *testing.T) (*Server, module.Dependencies) {
	t.Helper()
	deps := webtest.Dependencies(t)
	srv, err := NewServer(Config{Addr: "127.0.0.1:0", Dependencies: deps})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv, deps
}

func TestNewServerRequiresShell(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(Config{}); err == nil {
		t.Fatal("expected error without shell")
	}
}

func TestRootServesResponsiveShell(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rr := webtest.Get(srv.Handler(), "/", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	doc := webtest.Document(t, rr)
	if got, _ := doc.Find(`meta[name="viewport"]`).Attr("content"); !strings.Contains(got, "width=device-width") {
		t.Fatalf("viewport = %q", got)
	}
	if doc.Find(".app-layout .main-nav .nav-item").Length() != 8 {
		t.Fatal("expected eight navigation entries")
	}
	if doc.Find("#module-content .module-empty").Length() != 1 {
		t.Fatal("expected the welcome state before any activation")
	}
	if doc.Find(".widget-grid .widget").Length() == 0 {
		t.Fatal("expected widgets")
	}
}

func TestServerOwnedRoutes(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		path        string
		contentType string
		header      string
		headerValue string
	}{
		{path: "/up", contentType: "text/plain"},
		{path: "/sw.js", contentType: "text/javascript", header: "Service-Worker-Allowed", headerValue: "/"},
		{path: "/manifest.webmanifest", contentType: "application/manifest+json"},
		{path: "/static/app.css", contentType: "text/css"},
		{path: "/static/app.js", contentType: "javascript"},
	}
	for _, tc := range tests {
		rr := webtest.Get(h, tc.path, false)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", tc.path, rr.Code)
		}
		if got := rr.Header().Get("Content-Type"); !strings.Contains(got, tc.contentType) {
			t.Fatalf("GET %s content type = %q, want %q", tc.path, got, tc.contentType)
		}
		if tc.header != "" && rr.Header().Get(tc.header) != tc.headerValue {
			t.Fatalf("GET %s %s = %q", tc.path, tc.header, rr.Header().Get(tc.header))
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/sw.js", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /sw.js status = %d", rr.Code)
	}
}

func TestMetricsCountRequests(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Handler()
	webtest.Get(h, "/up", false)
	webtest.Get(h, "/modules/journal", true)

	rr := webtest.Get(h, "/metrics", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"lifeos_http_requests_total", "lifeos_module_switch_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestSlashlessPrefixesResolve(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	if rr := webtest.Get(srv.Handler(), "/settings", false); rr.Code != http.StatusOK {
		t.Fatalf("GET /settings status = %d", rr.Code)
	}
}

func TestServeStreamsEventsAndShutsDown(t *testing.T) {
	t.Parallel()

	srv, deps := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/up")
	if err != nil {
		t.Fatalf("get /up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "OK" {
		t.Fatalf("/up body = %q", body)
	}
	if srv.Addr() != ln.Addr().String() {
		t.Fatalf("Addr() = %q, want %q", srv.Addr(), ln.Addr().String())
	}

	conn, err := websocket.Dial("ws://"+ln.Addr().String()+"/events", "", base)
	if err != nil {
		t.Fatalf("dial events: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ready lifeosevents.Event
	if err := websocket.JSON.Receive(conn, &ready); err != nil {
		t.Fatalf("receive ready frame: %v", err)
	}
	if _, err := deps.Shell.Controller.Activate(ctx, "poetry"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	var evt lifeosevents.Event
	for evt.Topic != lifeosevents.TopicModuleActivated {
		if err := websocket.JSON.Receive(conn, &evt); err != nil {
			t.Fatalf("receive: %v", err)
		}
	}
	if evt.Payload["module"] != "poetry" {
		t.Fatalf("payload = %v", evt.Payload)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestShellScriptTagsRequestsWithClientHeader(t *testing.T) {
	t.Parallel()

	script, err := fs.ReadFile(static.FS, "app.js")
	if err != nil {
		t.Fatalf("read app.js: %v", err)
	}
	for _, want := range []string{
		`"` + httpx.ClientHeader + `"`,
		"payload.origin === CLIENT_ID",
		"dataset.navSeq",
		`closest(".main-nav a[data-module], a.widget-link[data-owner]")`,
	} {
		if !strings.Contains(string(script), want) {
			t.Fatalf("app.js missing %q", want)
		}
	}
}
