package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portfolio lifecycle counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Transitions     *prometheus.CounterVec
	BatchRuns       *prometheus.CounterVec
	BatchItems      *prometheus.CounterVec
	BatchDuration   prometheus.Histogram
	QueuedPortfolio prometheus.Gauge
}

// New registers the application metrics plus Go/process collectors on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_portfolio_transitions_total",
			Help: "Portfolio lifecycle transitions by action and outcome",
		}, []string{"action", "outcome"}),

		BatchRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_publish_batch_runs_total",
			Help: "Publish batch runs by trigger",
		}, []string{"trigger"}),

		BatchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_publish_batch_items_total",
			Help: "Portfolios processed by publish batches by outcome",
		}, []string{"outcome"}),

		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_publish_batch_duration_seconds",
			Help:    "Publish batch run latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		QueuedPortfolio: factory.NewGauge(prometheus.GaugeOpts{
			Name: "folio_publish_queue_size",
			Help: "Approved portfolios waiting for publication at the last batch run",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) RecordBatch(trigger string, queued, published, failed int, seconds float64) {
	if m == nil {
		return
	}
	m.BatchRuns.WithLabelValues(trigger).Inc()
	m.BatchItems.WithLabelValues("published").Add(float64(published))
	m.BatchItems.WithLabelValues("failed").Add(float64(failed))
	m.BatchDuration.Observe(seconds)
	m.QueuedPortfolio.Set(float64(queued))
}
