package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domrepo "PharmaWatch/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	eventsIngested *prometheus.CounterVec
	eventsDropped  *prometheus.CounterVec
	anomaliesFound *prometheus.GaugeVec
	signalsFound   *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmawatch_runs_total",
				Help: "Monitoring runs by product and result",
			},
			[]string{"product", "result"},
		),
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmawatch_events_ingested_total",
				Help: "Raw adverse-event records accepted into normalization",
			},
			[]string{"product"},
		),
		eventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmawatch_events_dropped_total",
				Help: "Raw adverse-event records dropped during normalization",
			},
			[]string{"product"},
		),
		anomaliesFound: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pharmawatch_anomalies",
				Help: "Anomalous quarters flagged in the latest run",
			},
			[]string{"product"},
		),
		signalsFound: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pharmawatch_signals",
				Help: "Safety signals flagged in the latest run",
			},
			[]string{"product"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmawatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pharmawatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records a completed monitoring run.
func (r *Recorder) RecordRun(product, result string) {
	r.runsTotal.WithLabelValues(product, result).Inc()
}

// RecordEventsIngested records accepted raw events.
func (r *Recorder) RecordEventsIngested(product string, n int) {
	r.eventsIngested.WithLabelValues(product).Add(float64(n))
}

// RecordDroppedEvents records malformed raw events dropped by normalization.
func (r *Recorder) RecordDroppedEvents(product string, n int) {
	r.eventsDropped.WithLabelValues(product).Add(float64(n))
}

// RecordAnomalies records the anomaly count of the latest run.
func (r *Recorder) RecordAnomalies(product string, n int) {
	r.anomaliesFound.WithLabelValues(product).Set(float64(n))
}

// RecordSignals records the signal count of the latest run.
func (r *Recorder) RecordSignals(product string, n int) {
	r.signalsFound.WithLabelValues(product).Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ domrepo.Metrics = (*Recorder)(nil)
