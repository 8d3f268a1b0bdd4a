package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeStale    = "stale"
)

// Reasons a background evaluation was not queued as a job of its own.
const (
	ReasonCoalesced = "coalesced"
	ReasonQueueFull = "queue_full"
)

// Metrics groups the collectors exported by the editor and executor.
type Metrics struct {
	registry *prometheus.Registry

	editRequests   *prometheus.CounterVec
	evaluations    *prometheus.CounterVec
	evalDuration   prometheus.Histogram
	staleResults   prometheus.Counter
	skippedJobs    *prometheus.CounterVec
	thumbnailsSent prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		editRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_edit_requests_total",
				Help: "Total number of processed edit requests",
			},
			[]string{"request", "outcome"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_evaluations_total",
				Help: "Total number of network evaluations",
			},
			[]string{"outcome"},
		),
		evalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nodegraph_evaluation_duration_seconds",
				Help:    "Duration of flatten plus evaluate",
				Buckets: prometheus.DefBuckets,
			},
		),
		staleResults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodegraph_stale_results_total",
				Help: "Evaluation results discarded because the network changed",
			},
		),
		skippedJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_skipped_jobs_total",
				Help: "Background evaluations merged into a waiting job or dropped on a full queue",
			},
			[]string{"reason"},
		),
		thumbnailsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodegraph_thumbnails_written_total",
				Help: "Thumbnails written to the cache",
			},
		),
	}
	m.registry.MustRegister(m.editRequests, m.evaluations, m.evalDuration, m.staleResults, m.skippedJobs, m.thumbnailsSent)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EditRequest counts one processed request.
func (m *Metrics) EditRequest(request, outcome string) {
	if m == nil {
		return
	}
	m.editRequests.WithLabelValues(request, outcome).Inc()
}

// Evaluation records one evaluation.
func (m *Metrics) Evaluation(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	m.evalDuration.Observe(elapsed.Seconds())
}

// StaleResult counts a result discarded by a generation check.
func (m *Metrics) StaleResult() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}

// SkippedJob counts a background evaluation that was not queued on its own.
func (m *Metrics) SkippedJob(reason string) {
	if m == nil {
		return
	}
	m.skippedJobs.WithLabelValues(reason).Inc()
}

// ThumbnailsWritten counts cached thumbnails.
func (m *Metrics) ThumbnailsWritten(n int) {
	if m == nil {
		return
	}
	m.thumbnailsSent.Add(float64(n))
}
