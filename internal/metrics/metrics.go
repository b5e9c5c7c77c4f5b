// Package metrics exposes Prometheus instrumentation for batch assembly.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rmtl_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
)

var (
	registerOnce sync.Once

	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec

	submitTotal   *prometheus.CounterVec
	submitLatency *prometheus.HistogramVec
	submitRows    prometheus.Counter

	documentTotal *prometheus.CounterVec

	validationFailures *prometheus.CounterVec

	enumCacheTotal *prometheus.CounterVec

	openWorkspaces prometheus.Gauge
)

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_total",
				Help: "Total backend fetches by source and result",
			},
			[]string{"source", "result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "fetch_latency_seconds",
				Help:    "Backend fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		submitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "submit_total",
				Help: "Total batch submissions by report type and result",
			},
			[]string{"report_type", "result"},
		)
		submitLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "submit_latency_seconds",
				Help:    "Batch submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		submitRows = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "submitted_rows_total",
				Help: "Total report rows accepted by the backend",
			},
		)
		documentTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_generation_total",
				Help: "Total post-submission document hand-offs by result",
			},
			[]string{"result"},
		)
		validationFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "validation_failures_total",
				Help: "Total batch validation failures by code",
			},
			[]string{"code"},
		)
		enumCacheTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "enum_cache_total",
				Help: "Enum vocabulary cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		openWorkspaces = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "open_workspaces",
				Help: "Number of live batch workspaces",
			},
		)

		prometheus.MustRegister(
			fetchTotal,
			fetchLatency,
			submitTotal,
			submitLatency,
			submitRows,
			documentTotal,
			validationFailures,
			enumCacheTotal,
			openWorkspaces,
		)
	})
}

// ObserveFetch records a backend fetch. source is "assignments" or "enums".
func ObserveFetch(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if fetchTotal != nil {
		fetchTotal.WithLabelValues(source, result).Inc()
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// ObserveSubmit records one submission attempt and, on success, its row count.
func ObserveSubmit(reportType, result string, rows int, duration time.Duration) {
	if reportType == "" {
		reportType = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if submitTotal != nil {
		submitTotal.WithLabelValues(reportType, result).Inc()
	}
	if submitLatency != nil {
		submitLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if result == ResultSuccess && rows > 0 && submitRows != nil {
		submitRows.Add(float64(rows))
	}
}

// IncDocument counts a document hand-off outcome.
func IncDocument(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if documentTotal != nil {
		documentTotal.WithLabelValues(result).Inc()
	}
}

// IncValidationFailure counts a rejected batch by its validation code.
func IncValidationFailure(code string) {
	if code == "" {
		code = "unknown"
	}
	if validationFailures != nil {
		validationFailures.WithLabelValues(code).Inc()
	}
}

// IncEnumCache counts an enum cache lookup ("hit", "miss" or "error").
func IncEnumCache(outcome string) {
	if enumCacheTotal != nil {
		enumCacheTotal.WithLabelValues(outcome).Inc()
	}
}

// SetOpenWorkspaces sets the live workspace gauge.
func SetOpenWorkspaces(n int) {
	if n < 0 {
		n = 0
	}
	if openWorkspaces != nil {
		openWorkspaces.Set(float64(n))
	}
}
