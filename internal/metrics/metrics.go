// Package metrics exposes Prometheus instruments for imports, transforms and
// dataset persistence.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFormatError = "format_error"
	OutcomeInvalid     = "invalid"
	OutcomeBusy        = "busy"
	OutcomeError       = "error"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chartdash_imports_total",
		Help: "Imports by file format and outcome",
	}, []string{"format", "outcome"})

	importBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chartdash_import_bytes",
		Help:    "Raw size of imported files",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chartdash_import_duration_seconds",
		Help:    "Time spent decoding and validating an import",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"format"})

	activeImports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chartdash_imports_active",
		Help: "Imports currently holding a limiter slot",
	})

	datasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chartdash_dataset_records",
		Help: "Records in the working sequence",
	})

	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chartdash_persistence_failures_total",
		Help: "Failed loads and saves of persisted dashboard state",
	}, []string{"op"})

	transformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chartdash_transform_duration_seconds",
		Help:    "Duration of transform pipeline operations",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"op"})
)

// ObserveImport records one finished import attempt.
func ObserveImport(format, outcome string, size int64, elapsed time.Duration) {
	importsTotal.WithLabelValues(format, outcome).Inc()
	if size > 0 {
		importBytes.Observe(float64(size))
	}
	importDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ImportStarted marks an import as holding a limiter slot.
func ImportStarted() {
	activeImports.Inc()
}

// ImportFinished releases what ImportStarted recorded.
func ImportFinished() {
	activeImports.Dec()
}

// SetDatasetSize reports the length of the working sequence.
func SetDatasetSize(n int) {
	datasetRecords.Set(float64(n))
}

// PersistenceFailure counts a failed "load" or "save".
func PersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// TransformTimer starts timing a transform; call ObserveDuration when done.
func TransformTimer(op string) *prometheus.Timer {
	return prometheus.NewTimer(transformDuration.WithLabelValues(op))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
