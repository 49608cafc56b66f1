package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

const namespace = "apidash"

// Metrics is a dashboard.Telemetry sink backed by a private prometheus registry.
type Metrics struct {
	registry  *prometheus.Registry
	factory   promauto.Factory
	events    *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ dashboard.Telemetry = (*Metrics)(nil)

// NewMetrics registers the dashboard collectors plus the Go runtime collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		factory:  factory,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "events_total",
			Help:      "Dashboard telemetry events by name",
		}, []string{"event"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "refresh_total",
			Help:      "Settled widget refreshes by terminal state",
		}, []string{"widget", "state"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "failures_total",
			Help:      "Failed widget refreshes by failure kind",
		}, []string{"widget", "kind"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "refresh_duration_seconds",
			Help:      "Time from refresh start to terminal state",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 10), // 25ms to ~13s
		}, []string{"widget"}),
	}
}

// Record satisfies dashboard.Telemetry.
func (m *Metrics) Record(_ context.Context, event string, payload map[string]any) {
	m.events.WithLabelValues(event).Inc()
	widget, _ := payload["widget"].(string)
	switch event {
	case "dashboard.widget.loaded":
		m.outcomes.WithLabelValues(widget, string(dashboard.StateLoaded)).Inc()
	case "dashboard.widget.prompt":
		m.outcomes.WithLabelValues(widget, string(dashboard.StatePrompt)).Inc()
	case "dashboard.widget.failed":
		m.outcomes.WithLabelValues(widget, string(dashboard.StateFailed)).Inc()
		kind, _ := payload["kind"].(string)
		if kind == "" {
			kind = "unknown"
		}
		m.failures.WithLabelValues(widget, kind).Inc()
	default:
		return
	}
	if d, ok := payload["duration"].(time.Duration); ok {
		m.durations.WithLabelValues(widget).Observe(d.Seconds())
	}
}

// TrackSubscribers exposes the live update subscriber count as a gauge.
func (m *Metrics) TrackSubscribers(hook *dashboard.BroadcastHook) {
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "subscribers",
		Help:      "Number of connected SSE and WebSocket subscribers",
	}, func() float64 { return float64(hook.Subscribers()) })
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
