package handlers

import (
	"net/http"
	"strconv"

	"media-converter/internal/database"
	"media-converter/internal/logging"
)

// HistoryResponse is returned by GET /api/conversions.
type HistoryResponse struct {
	Conversions []database.Conversion `json:"conversions"`
	Stats       database.HistoryStats `json:"stats"`
}

// GetConversions returns the most recent conversions, newest first. The
// optional limit query parameter is capped at database.MaxHistoryLimit.
func (h *Handlers) GetConversions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "History is disabled.", http.StatusNotFound)
		return
	}

	limit := database.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, "Invalid limit.", http.StatusBadRequest)
			return
		}
		limit = n
	}

	conversions, err := h.history.RecentConversions(r.Context(), limit)
	if err != nil {
		logging.Error("Failed to load conversion history: %v", err)
		writeJSONError(w, "Failed to load history.", http.StatusInternalServerError)
		return
	}

	stats, err := h.history.Stats(r.Context())
	if err != nil {
		logging.Error("Failed to load conversion stats: %v", err)
		writeJSONError(w, "Failed to load history.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, HistoryResponse{Conversions: conversions, Stats: stats})
}
