// Package metrics provides Prometheus instrumentation for the media-converter application.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "media_converter_" to avoid naming collisions with other
// applications. They are served on a separate port (METRICS_PORT) so the
// conversion endpoint and the scrape endpoint never share a listener.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Conversion Metrics
//
// Track what the conversion endpoint does with each upload:
//   - ConversionsTotal: Counter by final variant (accelerated/software/none) and status
//   - ConversionFallbacksTotal: Counter of accelerated failures that fell back to software
//   - ConversionDuration: Histogram of FFmpeg time per request by final variant
//   - ConversionsInProgress: Gauge of conversions currently running
//   - CommandRunsTotal: Counter of individual FFmpeg invocations by variant and status
//   - UploadBytes / OutputBytes: Histograms of input and output sizes
//   - RequestsRejectedTotal: Counter of requests rejected before any work, by reason
//
// ## Capability Metrics
//
//   - ProbesTotal: Counter of hardware capability probes by result
//   - HardwareAccelAvailable: Gauge set to 1 when the accelerated backend was found
//
// ## Workspace Metrics
//
//   - WorkspacesActive: Gauge of per-request workspaces on disk
//   - WorkspaceSizeBytes: Gauge of the total size of TEMP_DIR
//   - WorkspaceCleanupErrors: Counter of workspaces that could not be removed
//
// ## History Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: per-operation query counters and latency
//   - DBSizeBytes: Gauge of SQLite file sizes (main, WAL, SHM)
//   - HistoryConversions: Gauge of recorded conversions by status
//
// ## Archive Metrics
//
//   - ArchiveUploadsTotal: Counter of archive uploads by status
//   - ArchiveUploadDuration: Histogram of upload time
//
// # Collector
//
// Gauges that reflect state rather than events are refreshed by a [Collector]
// running on an interval:
//
//	collector := metrics.NewCollector(db, dbPath, 30*time.Second)
//	collector.SetWorkDir(cfg.TempDir)
//	collector.Start()
//	defer collector.Stop()
//
// # Initialization
//
// Call [InitializeMetrics] once at startup so every labelled series is
// exported with a zero value before the first event happens.
package metrics
