package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report outcome labels
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultDryRun  = "dry_run"
)

var (
	// Submission Metrics
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abusectl_reports_total",
			Help: "Total number of abuse reports processed",
		},
		[]string{"result"}, // success, failed, dry_run
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abusectl_validation_failures_total",
			Help: "Total number of reports rejected before submission",
		},
		[]string{"field"}, // ip, categories, comment, confidence, api_key, count
	)

	BulkBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abusectl_bulk_batches_total",
			Help: "Total number of bulk batches processed",
		},
		[]string{"mode"}, // submit, dry_run
	)

	// API Metrics
	APIResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abusectl_api_responses_total",
			Help: "Total number of AbuseIPDB responses by HTTP status",
		},
		[]string{"status_code"},
	)

	TransportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abusectl_transport_errors_total",
			Help: "Total number of requests that got no HTTP response",
		},
		[]string{"kind"}, // timeout, connection, request
	)

	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abusectl_request_duration_seconds",
			Help:    "AbuseIPDB report request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0},
		},
	)
)

// Helper functions for common metrics operations

func RecordReport(result string) {
	ReportsTotal.WithLabelValues(result).Inc()
}

func RecordValidationFailure(field string) {
	ValidationFailuresTotal.WithLabelValues(field).Inc()
}

func RecordBulkBatch(mode string) {
	BulkBatchesTotal.WithLabelValues(mode).Inc()
}

func RecordAPIResponse(statusCode int) {
	APIResponsesTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func RecordTransportError(kind string) {
	TransportErrorsTotal.WithLabelValues(kind).Inc()
}

func ObserveRequestDuration(seconds float64) {
	RequestDuration.Observe(seconds)
}
