package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest("GET", 200, time.Millisecond)
	m.ObserveSwitch("todo", "first", time.Millisecond, false)
	m.SwitchFailed("nope", "not_found")
	m.StoreOp("set", "ok")
	m.SetStoreBytes(12)
	m.WidgetRender("todo.open", "ok")
	m.EventPublished("store.changed")
	m.StreamOpened()
	m.StreamClosed()
	m.Reminder("fired")
	if m.Registry() != nil {
		t.Fatal("nil metrics should have no registry")
	}
}

func TestObserveSwitchCountsOverBudget(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSwitch("todo", "repeat", 10*time.Millisecond, false)
	m.ObserveSwitch("todo", "repeat", 300*time.Millisecond, true)

	if got := counterValue(t, m.ModuleSwitches.WithLabelValues("todo", "ok")); got != 2 {
		t.Fatalf("switches = %v, want 2", got)
	}
	if got := counterValue(t, m.SwitchOverBudget.WithLabelValues("todo", "repeat")); got != 1 {
		t.Fatalf("over budget = %v, want 1", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := New()
	m.WidgetRender("todo.open", "panic")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `lifeos_widget_renders_total{outcome="panic",widget="todo.open"} 1`) {
		t.Fatalf("expected widget render counter in output:\n%s", body)
	}
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
