package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// Metrics groups all Prometheus instruments used across the subsystem.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	JobsCompleted    *prometheus.CounterVec
	JobsFailed       *prometheus.CounterVec
	JobsDeadLettered *prometheus.CounterVec
	JobLatency       *prometheus.HistogramVec
	QueueDepthNormal prometheus.Gauge
	QueueDepthUrgent prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_jobs_completed_total",
			Help: "Total number of successfully processed notification jobs.",
		}, []string{"queue", "kind"}),

		JobsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_jobs_failed_total",
			Help: "Total number of failed job attempts (including ones later retried).",
		}, []string{"queue", "kind"}),

		JobsDeadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_jobs_dead_lettered_total",
			Help: "Total number of jobs whose retry attempts were exhausted.",
		}, []string{"queue", "kind"}),

		JobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_job_processing_seconds",
			Help:    "Processing latency from dequeue to handler completion.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),

		QueueDepthNormal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_queue_depth_normal",
			Help: "Current number of ready jobs on the normal queue.",
		}),
		QueueDepthUrgent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_queue_depth_urgent",
			Help: "Current number of ready jobs on the urgent queue.",
		}),
	}

	reg.MustRegister(
		m.JobsCompleted,
		m.JobsFailed,
		m.JobsDeadLettered,
		m.JobLatency,
		m.QueueDepthNormal,
		m.QueueDepthUrgent,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so worker.go stays import-free.
func (m *Metrics) WorkerHooks() (
	onCompleted func(queue string, kind domain.JobKind, latency time.Duration),
	onFailed func(queue string, kind domain.JobKind),
	onDeadLettered func(queue string, kind domain.JobKind),
) {
	onCompleted = func(queue string, kind domain.JobKind, latency time.Duration) {
		m.JobsCompleted.WithLabelValues(queue, string(kind)).Inc()
		m.JobLatency.WithLabelValues(string(kind)).Observe(latency.Seconds())
	}
	onFailed = func(queue string, kind domain.JobKind) {
		m.JobsFailed.WithLabelValues(queue, string(kind)).Inc()
	}
	onDeadLettered = func(queue string, kind domain.JobKind) {
		m.JobsDeadLettered.WithLabelValues(queue, string(kind)).Inc()
	}
	return
}
