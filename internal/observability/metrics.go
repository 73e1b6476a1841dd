package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// check-and-fanout engine.
type Metrics struct {
	ChecksTotal   prometheus.Counter
	StatusChanges prometheus.Counter
	CurrentLevel  prometheus.Gauge

	// Delivery metrics.
	Deliveries      *prometheus.CounterVec // labels: outcome={delivered,skipped,deactivated,failed}
	WebhookDuration prometheus.Histogram
	FanoutDuration  prometheus.Histogram

	// Diagnostic events by name, mirroring the structured event reporter.
	DiagnosticEvents *prometheus.CounterVec // labels: event

	SourceFetchDuration prometheus.Histogram
	ListenerRunning     prometheus.Gauge
	SubscribersNotified prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChecksTotal,
		m.StatusChanges,
		m.CurrentLevel,
		m.Deliveries,
		m.WebhookDuration,
		m.FanoutDuration,
		m.DiagnosticEvents,
		m.SourceFetchDuration,
		m.ListenerRunning,
		m.SubscribersNotified,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "french_toast",
			Name:      "checks_total",
			Help:      "Total status check cycles run.",
		}),
		StatusChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "french_toast",
			Name:      "status_changes_total",
			Help:      "Total confirmed advisory status changes.",
		}),
		CurrentLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "french_toast",
			Name:      "current_level",
			Help:      "Ordinal of the current advisory level, 0 (LOW) through 4 (SEVERE).",
		}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "french_toast",
			Name:      "deliveries_total",
			Help:      "Webhook delivery attempts by outcome.",
		}, []string{"outcome"}),
		WebhookDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "french_toast",
			Name:      "webhook_post_duration_seconds",
			Help:      "Duration of a single webhook POST.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "french_toast",
			Name:      "fanout_duration_seconds",
			Help:      "Duration of a complete fanout pass over qualifying subscribers.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DiagnosticEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "french_toast",
			Name:      "diagnostic_events_total",
			Help:      "Diagnostic events by name.",
		}, []string{"event"}),
		SourceFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "french_toast",
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of the upstream status feed fetch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ListenerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "french_toast",
			Name:      "listener_running",
			Help:      "1 when the trigger listener is active, 0 when shut down.",
		}),
		SubscribersNotified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "french_toast",
			Name:      "subscribers_notified_total",
			Help:      "Total successful subscriber notifications.",
		}),
	}
}
