package handlers

import (
	"net/http"

	"media-converter/internal/startup"
)

// VersionResponse is the build information plus the FFmpeg found at startup.
type VersionResponse struct {
	startup.BuildInfo
	FFmpeg string `json:"ffmpeg,omitempty"`
}

// SetFFmpegVersion records the FFmpeg version line reported by /version.
func (h *Handlers) SetFFmpegVersion(version string) {
	h.ffmpegVersion = version
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, VersionResponse{
		BuildInfo: startup.GetBuildInfo(),
		FFmpeg:    h.ffmpegVersion,
	})
}
