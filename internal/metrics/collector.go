package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

// SessionStats is a point-in-time summary of the metrics recorded by this process
type SessionStats struct {
	Submitted          int64            `json:"submitted"`
	Succeeded          int64            `json:"succeeded"`
	Failed             int64            `json:"failed"`
	DryRuns            int64            `json:"dry_runs"`
	ValidationFailures map[string]int64 `json:"validation_failures"`
	StatusCodes        map[string]int64 `json:"status_codes"`
	TransportErrors    map[string]int64 `json:"transport_errors"`
	BulkBatches        int64            `json:"bulk_batches"`
	AverageLatency     float64          `json:"avg_latency_ms"`
}

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		ReportsTotal,
		ValidationFailuresTotal,
		BulkBatchesTotal,
		APIResponsesTotal,
		TransportErrorsTotal,
		RequestDuration,
	}
}

func registry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return reg, nil
}

// Snapshot gathers the abusectl metrics into a SessionStats
func Snapshot() (*SessionStats, error) {
	reg, err := registry()
	if err != nil {
		return nil, err
	}

	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	stats := &SessionStats{
		ValidationFailures: make(map[string]int64),
		StatusCodes:        make(map[string]int64),
		TransportErrors:    make(map[string]int64),
	}

	for _, mf := range families {
		switch mf.GetName() {
		case "abusectl_reports_total":
			for label, v := range counterByLabel(mf, "result") {
				switch label {
				case ResultSuccess:
					stats.Succeeded = v
				case ResultFailed:
					stats.Failed = v
				case ResultDryRun:
					stats.DryRuns = v
				}
			}
		case "abusectl_validation_failures_total":
			stats.ValidationFailures = counterByLabel(mf, "field")
		case "abusectl_api_responses_total":
			stats.StatusCodes = counterByLabel(mf, "status_code")
		case "abusectl_transport_errors_total":
			stats.TransportErrors = counterByLabel(mf, "kind")
		case "abusectl_bulk_batches_total":
			for _, v := range counterByLabel(mf, "mode") {
				stats.BulkBatches += v
			}
		case "abusectl_request_duration_seconds":
			stats.AverageLatency = averageMillis(mf)
		}
	}

	stats.Submitted = stats.Succeeded + stats.Failed
	return stats, nil
}

// Labels returns the keys of m in sorted order, for stable display
func Labels(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Push sends the abusectl metrics to a Prometheus Pushgateway
func Push(url, job string) error {
	reg, err := registry()
	if err != nil {
		return err
	}
	if err := push.New(url, job).Gatherer(reg).Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

// Helper functions to extract values from Prometheus metrics

func counterByLabel(mf *dto.MetricFamily, name string) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name {
				out[lp.GetValue()] += int64(m.GetCounter().GetValue())
			}
		}
	}
	return out
}

func averageMillis(mf *dto.MetricFamily) float64 {
	for _, m := range mf.GetMetric() {
		h := m.GetHistogram()
		if h.GetSampleCount() == 0 {
			continue
		}
		return h.GetSampleSum() / float64(h.GetSampleCount()) * 1000
	}
	return 0
}
