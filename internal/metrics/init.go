package metrics

// Label values shared with the packages that record into these metrics.
const (
	VariantAccelerated = "accelerated"
	VariantSoftware    = "software"
	VariantNone        = "none"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, v := range []string{VariantAccelerated, VariantSoftware, VariantNone} {
		ConversionsTotal.WithLabelValues(v, StatusSuccess)
		ConversionsTotal.WithLabelValues(v, StatusFailed)
		ConversionDuration.WithLabelValues(v)
	}

	for _, v := range []string{VariantAccelerated, VariantSoftware} {
		CommandRunsTotal.WithLabelValues(v, StatusSuccess)
		CommandRunsTotal.WithLabelValues(v, StatusFailed)
	}

	for _, reason := range []string{"missing_input", "invalid_format", "too_large"} {
		RequestsRejectedTotal.WithLabelValues(reason)
	}

	for _, result := range []string{"available", "unavailable", "error"} {
		ProbesTotal.WithLabelValues(result)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	for _, op := range []string{"initialize_schema", "record_conversion", "recent_conversions", "stats", "prune"} {
		DBQueryTotal.WithLabelValues(op, StatusSuccess)
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, status := range []string{StatusSuccess, StatusFailed} {
		HistoryConversions.WithLabelValues(status)
		ArchiveUploadsTotal.WithLabelValues(status)
	}
}
