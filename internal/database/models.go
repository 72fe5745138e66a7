package database

import "time"

// Conversion status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Conversion is one recorded request to the conversion endpoint.
type Conversion struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"requestId"`
	SourceName     string    `json:"sourceName"`
	SourceCategory string    `json:"sourceCategory,omitempty"`
	TargetFormat   string    `json:"targetFormat"`
	Variant        string    `json:"variant,omitempty"`
	FellBack       bool      `json:"fellBack"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	InputBytes     int64     `json:"inputBytes"`
	OutputBytes    int64     `json:"outputBytes"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HistoryStats summarises the conversions table.
type HistoryStats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Fallbacks int `json:"fallbacks"`
}
