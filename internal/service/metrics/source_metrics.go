package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SourceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pharmawatch",
			Subsystem: "sources",
			Name:      "latency_seconds",
			Help:      "Latency of upstream data-source requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pharmawatch",
			Subsystem: "sources",
			Name:      "errors_total",
			Help:      "Errors by upstream data source",
		},
		[]string{"source"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SourceLatency, SourceErrors)
	})
}
