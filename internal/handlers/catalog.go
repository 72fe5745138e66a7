package handlers

import (
	"net/http"

	"media-converter/internal/formats"
	"media-converter/internal/transcoder"
)

// CapabilitiesResponse reports which command variant video conversions will
// try first.
type CapabilitiesResponse struct {
	Backend       transcoder.HWAccel   `json:"backend"`
	Available     bool                 `json:"available"`
	Methods       []transcoder.HWAccel `json:"methods"`
	ForceSoftware bool                 `json:"forceSoftware"`
	Device        string               `json:"device,omitempty"`
	ProbeError    string               `json:"probeError,omitempty"`
}

// GetFormats returns the format catalog
func (h *Handlers) GetFormats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, formats.Catalog())
}

// GetCapabilities returns the hardware acceleration probe result
func (h *Handlers) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	cfg := h.transcoder.Config()

	resp := CapabilitiesResponse{
		Backend:       transcoder.AccelBackend,
		Methods:       []transcoder.HWAccel{},
		ForceSoftware: cfg.ForceSoftware,
	}

	caps, err := h.transcoder.Capabilities(r.Context())
	if err != nil {
		// Internal detail stays in the logs
		resp.ProbeError = "probe failed"
	} else {
		resp.Methods = append(resp.Methods, caps.List()...)
		resp.Available = caps.Has(transcoder.AccelBackend) && !cfg.ForceSoftware
	}
	if resp.Available {
		resp.Device = cfg.VAAPIDevice
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, resp)
}
