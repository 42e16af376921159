// Package metrics registers the Prometheus collectors for coverage runs and
// the HTTP API. Collectors live on the default registry and are exposed by
// the server on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Coverage Metrics
	CoverageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverage_runs_total",
			Help: "Total number of coverage computations",
		},
		[]string{"source"}, // "cli", "api"
	)

	CoverageRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverage_run_duration_seconds",
			Help:    "Duration of a coverage computation in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"source"},
	)

	TopicsEvaluatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverage_topics_evaluated_total",
			Help: "Total number of curriculum topics evaluated",
		},
	)

	TopicsMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverage_topics_matched_total",
			Help: "Total number of curriculum topics matched to content",
		},
	)

	LastOverallCoverage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverage_last_overall_pct",
			Help: "Overall coverage percentage of the most recent run",
		},
	)

	ReportsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverage_reports_persisted_total",
			Help: "Coverage reports written to the database",
		},
		[]string{"status"}, // "success", "error"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordCoverageRun records one matcher invocation and its totals
func RecordCoverageRun(source string, duration time.Duration, totalTopics, totalMatched int, overallPct float64) {
	CoverageRunsTotal.WithLabelValues(source).Inc()
	CoverageRunDuration.WithLabelValues(source).Observe(duration.Seconds())
	TopicsEvaluatedTotal.Add(float64(totalTopics))
	TopicsMatchedTotal.Add(float64(totalMatched))
	LastOverallCoverage.Set(overallPct)
}

// RecordPersist records the outcome of storing a report
func RecordPersist(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportsPersistedTotal.WithLabelValues(status).Inc()
}

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rejected request
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
