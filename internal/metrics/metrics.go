package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	BatchCount     prometheus.Counter
	ProcessedCount prometheus.Counter
	MatchedCount   prometheus.Counter
	BlockedCount   prometheus.Counter
	SendSuccesses  prometheus.Counter
	SendFailures   prometheus.Counter
	SendDuration   prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		BatchCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_batch_count",
			Help: "Total number of pipeline batch runs",
		}),
		ProcessedCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_processed_count",
			Help: "Total number of emails processed by the pipeline",
		}),
		MatchedCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_matched_count",
			Help: "Total number of emails that resulted in at least one assignment",
		}),
		BlockedCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_blocked_count",
			Help: "Total number of emails rejected by policy",
		}),
		SendSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_send_successes",
			Help: "Total number of successfully sent responses",
		}),
		SendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shift_triage_send_failures",
			Help: "Total number of failed response sends",
		}),
		SendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shift_triage_send_duration_seconds",
			Help:    "Time spent sending responses",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
