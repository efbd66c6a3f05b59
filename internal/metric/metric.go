// Package metric holds the Prometheus collectors for query evaluation and
// document materialization. A nil *Metrics is valid and records nothing.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for QueriesTotal.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

// Mode labels for DocumentsMaterialized.
const (
	ModeSingle     = "single"
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Metrics contains the collectors shared by the query executor and the
// materialization driver.
type Metrics struct {
	QueriesTotal          *prometheus.CounterVec
	QueryDuration         prometheus.Histogram
	QueryResults          prometheus.Histogram
	CandidatesExcluded    prometheus.Counter
	DocumentsMaterialized *prometheus.CounterVec
	ReorderBufferPeak     prometheus.Gauge
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regulum",
				Subsystem: "query",
				Name:      "total",
				Help:      "Total number of queries run, by outcome",
			},
			[]string{"outcome"},
		),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "regulum",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query evaluation time in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		QueryResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "regulum",
			Subsystem: "query",
			Name:      "results",
			Help:      "Number of ids returned per query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		CandidatesExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regulum",
			Subsystem: "query",
			Name:      "candidates_excluded_total",
			Help:      "Candidates dropped because a literal could not be read as the filter's type",
		}),
		DocumentsMaterialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regulum",
				Subsystem: "document",
				Name:      "materialized_total",
				Help:      "Total number of documents materialized, by driver mode",
			},
			[]string{"mode"},
		),
		ReorderBufferPeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "regulum",
			Subsystem: "document",
			Name:      "reorder_buffer_peak",
			Help:      "Largest number of out-of-order documents held by the last parallel export",
		}),
	}
}

// Collectors returns every collector, for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.QueriesTotal,
		m.QueryDuration,
		m.QueryResults,
		m.CandidatesExcluded,
		m.DocumentsMaterialized,
		m.ReorderBufferPeak,
	}
}

// Register creates the collectors and registers them with reg.
func Register(reg prometheus.Registerer) (*Metrics, error) {
	m := NewMetrics()
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(outcome string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.QueryDuration.Observe(elapsed.Seconds())
		m.QueryResults.Observe(float64(results))
	}
}

// CandidateExcluded counts one candidate dropped by a coercion failure.
func (m *Metrics) CandidateExcluded() {
	if m == nil {
		return
	}
	m.CandidatesExcluded.Inc()
}

// DocumentMaterialized counts one emitted document.
func (m *Metrics) DocumentMaterialized(mode string) {
	if m == nil {
		return
	}
	m.DocumentsMaterialized.WithLabelValues(mode).Inc()
}

// SetReorderPeak records the reorder buffer high-water mark.
func (m *Metrics) SetReorderPeak(n int) {
	if m == nil {
		return
	}
	m.ReorderBufferPeak.Set(float64(n))
}
