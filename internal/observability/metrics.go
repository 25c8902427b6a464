// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SamplesIngested   prometheus.Counter
	SamplesStored     prometheus.Counter
	RunsCreated       *prometheus.CounterVec
	IngestErrors      *prometheus.CounterVec
	WSReconnectsTotal prometheus.Counter
	SampleBufferSize  prometheus.Gauge

	// Analysis metrics
	AnalysesTotal         *prometheus.CounterVec
	AnalysisDuration      prometheus.Histogram
	ValidationRunsTotal   *prometheus.CounterVec
	ValidationDiscrepancy prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSampleUnixSeconds prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "clocklab"
	}

	return &Metrics{
		SamplesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_ingested_total",
			Help:      "Total number of TE samples received from the monitor stream",
		}),
		SamplesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_stored_total",
			Help:      "Total number of TE samples written to the sample store",
		}),
		RunsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "runs_created_total",
			Help:      "Total number of measurement runs created by source",
		}, []string{"source"}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by stage",
		}, []string{"stage"}),
		WSReconnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ws_reconnects_total",
			Help:      "Total number of websocket reconnect attempts",
		}),
		SampleBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sample_buffer_size",
			Help:      "Current number of samples buffered before the next flush",
		}),

		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analyses run by compliance verdict",
		}, []string{"verdict"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Wall time of a full analysis pipeline run",
			Buckets:   prometheus.DefBuckets,
		}),
		ValidationRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Total number of dual-path validations by verdict",
		}, []string{"verdict"}),
		ValidationDiscrepancy: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "discrepancies_total",
			Help:      "Total number of metric discrepancies beyond tolerance",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency by backend and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors by backend and operation",
		}, []string{"database", "operation"}),

		LastSampleUnixSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_sample_unix_seconds",
			Help:      "Wall-clock time of the most recently ingested sample",
		}),
	}
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSampleIngested increments the ingested-sample counter.
func RecordSampleIngested() {
	DefaultMetrics.SamplesIngested.Inc()
}

// RecordRunCreated increments the runs-created counter for a source.
func RecordRunCreated(source string) {
	DefaultMetrics.RunsCreated.WithLabelValues(source).Inc()
}

// RecordIngestError records an ingestion error for a pipeline stage.
func RecordIngestError(stage string) {
	DefaultMetrics.IngestErrors.WithLabelValues(stage).Inc()
}

// RecordAnalysis records one analysis run with its compliance verdict.
func RecordAnalysis(pass bool, durationSeconds float64) {
	verdict := "fail"
	if pass {
		verdict = "pass"
	}
	DefaultMetrics.AnalysesTotal.WithLabelValues(verdict).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordValidation records one dual-path validation outcome.
func RecordValidation(pass bool, discrepancies int) {
	verdict := "fail"
	if pass {
		verdict = "pass"
	}
	DefaultMetrics.ValidationRunsTotal.WithLabelValues(verdict).Inc()
	DefaultMetrics.ValidationDiscrepancy.Add(float64(discrepancies))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
