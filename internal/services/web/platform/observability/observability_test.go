package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRecorder struct {
	method string
	status int
	calls  int
}

func (f *fakeRecorder) ObserveRequest(method string, status int, _ time.Duration) {
	f.method = method
	f.status = status
	f.calls++
}

func TestRequestLoggerLogsMethodAndPath(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogger(zap.New(core), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/modules/todo", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" || fields["path"] != "/modules/todo" || fields["request_id"] != "req-123" {
		t.Fatalf("log fields = %v", fields)
	}
	if fields["status"] != int64(http.StatusNoContent) {
		t.Fatalf("status field = %v, want 204", fields["status"])
	}
}

func TestRequestLoggerCapturesImplicitStatusOKAndBytes(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	rec := &fakeRecorder{}
	h := RequestLogger(zap.New(core), rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/up", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	fields := logs.All()[0].ContextMap()
	if fields["status"] != int64(http.StatusOK) || fields["bytes"] != int64(2) {
		t.Fatalf("log fields = %v", fields)
	}
	if _, ok := fields["latency"]; !ok {
		t.Fatalf("latency missing from %v", fields)
	}
	if rec.calls != 1 || rec.method != http.MethodGet || rec.status != http.StatusOK {
		t.Fatalf("recorder = %+v", rec)
	}
}
