package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus instruments updated by sessions. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	TurnsIngested     *prometheus.CounterVec
	IngestionFailures *prometheus.CounterVec
	IngestionDuration *prometheus.HistogramVec
}

// NewMetrics registers the session instruments on reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_ingested_total",
			Help:      "Conversation turns written to the store, by ingestion mode.",
		}, []string{"mode"}),
		IngestionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_failures_total",
			Help:      "Turns the store refused, by ingestion mode.",
		}, []string{"mode"}),
		IngestionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Time spent writing a single turn, by ingestion mode.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
}

func (m *Metrics) observe(mode Mode, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.IngestionDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if err != nil {
		m.IngestionFailures.WithLabelValues(string(mode)).Inc()
		return
	}
	m.TurnsIngested.WithLabelValues(string(mode)).Inc()
}
