package handlers

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"media-converter/internal/converter"
	"media-converter/internal/logging"
	"media-converter/internal/middleware"
	"media-converter/internal/streaming"
)

// Client-facing error messages for POST /api/convert.
const (
	msgMissingInput     = "File or format missing."
	msgInvalidFormat    = "Invalid format."
	msgTooLarge         = "File too large."
	msgConversionFailed = "Conversion failed."
)

// Form field names of the conversion request.
const (
	fieldFile   = "file"
	fieldFormat = "format"
)

const (
	// multipartMemory is how much of the form is held in memory before
	// ParseMultipartForm spills file parts to disk.
	multipartMemory = 32 << 20

	// multipartOverhead allows for boundaries, part headers and the format
	// field on top of the file itself.
	multipartOverhead = 1 << 20
)

// Convert handles POST /api/convert: a multipart form with a "file" part and
// a "format" field. On success the converted bytes are returned as an
// attachment named <base>.<format>.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			writeJSONError(w, msgTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		logging.Debug("Rejected conversion request: %v", err)
		writeJSONError(w, msgMissingInput, http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("Failed to remove multipart temp files: %v", err)
		}
	}()

	format := r.FormValue(fieldFormat)
	file, header, err := r.FormFile(fieldFile)
	if err != nil || strings.TrimSpace(format) == "" || header.Filename == "" {
		if file != nil {
			file.Close()
		}
		writeJSONError(w, msgMissingInput, http.StatusBadRequest)
		return
	}
	defer file.Close()

	out, err := h.converter.Convert(r.Context(), converter.Request{
		Filename: header.Filename,
		Body:     file,
		Format:   format,
	})
	if err != nil {
		switch {
		case errors.Is(err, converter.ErrBadRequest):
			writeJSONError(w, msgMissingInput, http.StatusBadRequest)
		case errors.Is(err, converter.ErrInvalidFormat):
			writeJSONError(w, msgInvalidFormat, http.StatusBadRequest)
		case errors.Is(err, converter.ErrTooLarge):
			writeJSONError(w, msgTooLarge, http.StatusRequestEntityTooLarge)
		default:
			writeJSONError(w, msgConversionFailed, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", attachmentDisposition(out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Conversion-Variant", string(out.Variant))
	w.Header().Set("X-Conversion-Fallback", strconv.FormatBool(out.FellBack))
	w.Header().Set(middleware.RequestIDHeader, out.RequestID)
	w.WriteHeader(http.StatusOK)

	if _, err := streaming.Send(r.Context(), w, bytes.NewReader(out.Data), h.sendConfig); err != nil {
		log := logging.ForRequest(out.RequestID)
		if errors.Is(err, streaming.ErrClientGone) {
			log.Debug("Client went away before %s was sent", out.Filename)
			return
		}
		log.Warn("Failed to send converted file: %v", err)
	}
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	// mime/multipart does not always wrap the reader's error
	return strings.Contains(err.Error(), "request body too large")
}

// attachmentDisposition builds the Content-Disposition header. Plain ASCII
// names come out as `attachment; filename=clip.mp4`; anything else is quoted
// or RFC 2231 encoded.
func attachmentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
