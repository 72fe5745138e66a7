package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/startup"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// healthCheckTimeout bounds the history database ping.
const healthCheckTimeout = 2 * time.Second

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	ActiveConversions int    `json:"activeConversions"`
	WorkspaceError    string `json:"workspaceError,omitempty"`
	ForceSoftware     bool   `json:"forceSoftware"`
	HistoryEnabled    bool   `json:"historyEnabled"`
	HistoryError      string `json:"historyError,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// checkHistory pings the history database if one is configured.
func (h *Handlers) checkHistory(ctx context.Context) error {
	if h.history == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return h.history.Ping(ctx)
}

// HealthCheck returns the health status of the service. A failing history
// database only degrades the service; an unusable workspace root makes it
// unhealthy with 503.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:            statusHealthy,
		Ready:             true,
		Version:           startup.Version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		ActiveConversions: h.transcoder.Active(),
		ForceSoftware:     h.transcoder.Config().ForceSoftware,
		HistoryEnabled:    h.history != nil,
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
	}

	if err := h.checkHistory(r.Context()); err != nil {
		logging.Warn("Health check: history database unavailable: %v", err)
		response.Status = statusDegraded
		response.HistoryError = "history database unavailable"
	}

	code := http.StatusOK
	if err := h.workspaces.EnsureRoot(); err != nil {
		logging.Error("Health check: workspace root unavailable: %v", err)
		response.Status = statusUnhealthy
		response.Ready = false
		response.WorkspaceError = "workspace root unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive", http.StatusOK)
}

// ReadinessCheck returns 200 only when uploads can be stored. History is not
// required for conversions and does not affect readiness.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if err := h.workspaces.EnsureRoot(); err != nil {
		logging.Warn("Readiness check failed: %v", err)
		writeJSONStatus(w, "not_ready", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready", http.StatusOK)
}
