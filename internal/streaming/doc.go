/*
Package streaming sends converted files to clients with per-write deadlines.

The HTTP server runs without a global WriteTimeout because conversions can
take minutes. Without one, a client that stops reading would hold the
response (and the converted bytes in memory) until the TCP connection dies.
[Send] writes the body in chunks and gives each chunk its own deadline via
[http.ResponseController], so a stalled client is cut off after
[Config.WriteTimeout] while a slow but steady one is not.

# Usage

	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	n, err := streaming.Send(r.Context(), w, bytes.NewReader(data), streaming.DefaultConfig())
	if errors.Is(err, streaming.ErrClientGone) {
		// Not a server error
	}

Response writers that cannot set deadlines (httptest.ResponseRecorder, or a
middleware writer without an Unwrap method) are written to without one.

# Errors

	ErrWriteTimeout  a chunk could not be written within WriteTimeout
	ErrClientGone    the request context was canceled between chunks

Other write errors are returned unchanged.
*/
package streaming
