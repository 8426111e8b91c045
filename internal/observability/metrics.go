package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nowcast"

// Metrics holds the Prometheus collectors for the poller and its sinks.
type Metrics struct {
	Cycles        *prometheus.CounterVec // labels: outcome={success,fetch_error,parse_error}
	FetchDuration prometheus.Histogram
	FetchErrors   *prometheus.CounterVec // labels: kind={http,network,timeout,unknown}
	ParseErrors   prometheus.Counter
	Skipped       prometheus.Counter
	PollerRunning prometheus.Gauge

	// Latest snapshot.
	AlertsParsed prometheus.Gauge
	AlertsActive prometheus.Gauge
	RegionActive *prometheus.GaugeVec // labels: region

	SinkErrors *prometheus.CounterVec // labels: sink
}

func newMetrics() *Metrics {
	return &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of feed requests, successful or not.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed feed requests by error kind.",
		}, []string{"kind"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Feed documents that were not well-formed XML.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_skipped_total",
			Help:      "Warning elements that produced no alert.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
		AlertsParsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_parsed",
			Help:      "Alerts in the latest snapshot, after per-region fan-out.",
		}),
		AlertsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_active",
			Help:      "Alerts in the latest snapshot whose window contains the parse time.",
		}),
		RegionActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "region_active",
			Help:      "1 when a configured region has an active alert.",
		}, []string{"region"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed snapshot publications by sink.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Cycles,
		m.FetchDuration,
		m.FetchErrors,
		m.ParseErrors,
		m.Skipped,
		m.PollerRunning,
		m.AlertsParsed,
		m.AlertsActive,
		m.RegionActive,
		m.SinkErrors,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
