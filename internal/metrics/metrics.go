package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_conversions_total",
			Help: "Total number of conversion requests by final variant and outcome",
		},
		[]string{"variant", "status"},
	)

	ConversionFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_converter_conversion_fallbacks_total",
			Help: "Number of times the accelerated command failed and the software command was tried",
		},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_conversion_duration_seconds",
			Help:    "Time spent running FFmpeg for one request, including any fallback",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"variant"},
	)

	ConversionsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_conversions_in_progress",
			Help: "Number of conversions currently running",
		},
	)

	ConversionsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_conversions_queued",
			Help: "Number of conversions waiting for a free FFmpeg slot",
		},
	)

	CommandRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_command_runs_total",
			Help: "FFmpeg invocations by command variant and outcome",
		},
		[]string{"variant", "status"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_converter_upload_bytes",
			Help:    "Size of uploaded input files in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 10),
		},
	)

	OutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_converter_output_bytes",
			Help:    "Size of converted output files in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 10),
		},
	)

	RequestsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_requests_rejected_total",
			Help: "Conversion requests rejected before any work was done",
		},
		[]string{"reason"},
	)
)

// Capability probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_capability_probes_total",
			Help: "Hardware capability probes by result",
		},
		[]string{"result"}, // "available", "unavailable", "error"
	)

	HardwareAccelAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_hwaccel_available",
			Help: "1 if the last capability probe reported the configured acceleration backend",
		},
	)
)

// Workspace metrics
var (
	WorkspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_workspaces_active",
			Help: "Number of per-request workspaces currently on disk",
		},
	)

	WorkspaceSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_workspace_size_bytes",
			Help: "Total size of the temporary working directory in bytes",
		},
	)

	WorkspaceCleanupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_converter_workspace_cleanup_errors_total",
			Help: "Number of per-request workspaces that could not be removed",
		},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a transient error",
		},
		[]string{"operation"}, // "remove", "read"
	)
)

// History database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_db_queries_total",
			Help: "Total number of history database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_db_query_duration_seconds",
			Help:    "History database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)

	HistoryConversions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_history_conversions",
			Help: "Conversions recorded in the history database by status",
		},
		[]string{"status"},
	)
)

// Archive metrics
var (
	ArchiveUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_archive_uploads_total",
			Help: "Converted outputs uploaded to the archive bucket by status",
		},
		[]string{"status"},
	)

	ArchiveUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_converter_archive_upload_duration_seconds",
			Help:    "Archive upload duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
)

// Runtime metrics
var (
	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_go_memalloc_bytes",
			Help: "Current Go heap allocation in bytes",
		},
	)

	GoGoroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_go_goroutines",
			Help: "Current number of goroutines",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
