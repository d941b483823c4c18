// Package metrics holds the Prometheus collectors exported by LifeOS.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lifeos"

// Metrics groups collectors registered on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	ModuleSwitches   *prometheus.CounterVec
	SwitchDuration   *prometheus.HistogramVec
	SwitchOverBudget *prometheus.CounterVec

	StoreOps   *prometheus.CounterVec
	StoreBytes prometheus.Gauge

	WidgetRenders *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec
	WSConnections   prometheus.Gauge

	Reminders *prometheus.CounterVec
}

// New creates collectors on a fresh registry with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method"}),

		ModuleSwitches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_switches_total",
			Help:      "Module activations by module and outcome",
		}, []string{"module", "outcome"}),
		SwitchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "module_switch_duration_seconds",
			Help:      "Time from activation request to rendered content",
			Buckets:   []float64{.005, .01, .025, .05, .1, .2, .5, 1},
		}, []string{"module", "kind"}),
		SwitchOverBudget: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_switch_over_budget_total",
			Help:      "Activations that exceeded their latency budget",
		}, []string{"module", "kind"}),

		StoreOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Persistent store operations by kind and result",
		}, []string{"op", "result"}),
		StoreBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_bytes",
			Help:      "Bytes currently held by the persistent store",
		}),

		WidgetRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "widget_renders_total",
			Help:      "Widget renders by widget and outcome",
		}, []string{"widget", "outcome"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on the bus by topic",
		}, []string{"topic"}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open event stream connections",
		}),

		Reminders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminders processed by outcome",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveSwitch records a module activation. kind is "first" or "repeat".
func (m *Metrics) ObserveSwitch(module, kind string, elapsed time.Duration, overBudget bool) {
	if m == nil {
		return
	}
	m.ModuleSwitches.WithLabelValues(module, "ok").Inc()
	m.SwitchDuration.WithLabelValues(module, kind).Observe(elapsed.Seconds())
	if overBudget {
		m.SwitchOverBudget.WithLabelValues(module, kind).Inc()
	}
}

// SwitchFailed records an activation that did not change state.
func (m *Metrics) SwitchFailed(module, outcome string) {
	if m == nil {
		return
	}
	m.ModuleSwitches.WithLabelValues(module, outcome).Inc()
}

// StoreOp records a store operation result.
func (m *Metrics) StoreOp(op, result string) {
	if m == nil {
		return
	}
	m.StoreOps.WithLabelValues(op, result).Inc()
}

// SetStoreBytes records current store usage.
func (m *Metrics) SetStoreBytes(n int64) {
	if m == nil {
		return
	}
	m.StoreBytes.Set(float64(n))
}

// WidgetRender records a widget render outcome ("ok", "error", "panic").
func (m *Metrics) WidgetRender(widget, outcome string) {
	if m == nil {
		return
	}
	m.WidgetRenders.WithLabelValues(widget, outcome).Inc()
}

// EventPublished counts one published event.
func (m *Metrics) EventPublished(topic string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}

// StreamOpened tracks an event stream connection.
func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// StreamClosed tracks an event stream disconnect.
func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Reminder records a reminder outcome ("fired", "suppressed", "error").
func (m *Metrics) Reminder(outcome string) {
	if m == nil {
		return
	}
	m.Reminders.WithLabelValues(outcome).Inc()
}
