package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"media-converter/internal/logging"
)

// Sentinel errors for Send.
var (
	// ErrWriteTimeout indicates that a chunk exceeded the configured write timeout.
	// This typically occurs when the client stopped reading.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the request context was canceled before the
	// body was fully sent.
	ErrClientGone = errors.New("client disconnected")
)

// Config controls Send.
type Config struct {
	// WriteTimeout bounds each chunk write (0 = no deadline)
	WriteTimeout time.Duration
	// ChunkSize is the size of each write; 0 uses 64KB
	ChunkSize int
}

const defaultChunkSize = 64 * 1024

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// Send copies r to w in chunks, flushing after each one. It returns the number
// of bytes written. Headers and status must already be set by the caller.
func Send(ctx context.Context, w http.ResponseWriter, r io.Reader, config Config) (int64, error) {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	rc := http.NewResponseController(w)
	deadlines := config.WriteTimeout > 0
	start := time.Now()
	buf := make([]byte, chunkSize)
	var written int64

	defer func() {
		// Clear the deadline so keep-alive reuse of the connection is unaffected.
		if deadlines {
			_ = rc.SetWriteDeadline(time.Time{})
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return written, ErrClientGone
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if deadlines {
				if err := rc.SetWriteDeadline(time.Now().Add(config.WriteTimeout)); err != nil {
					if !errors.Is(err, http.ErrNotSupported) {
						return written, err
					}
					deadlines = false
				}
			}

			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, writeError(err)
			}

			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, writeError(err)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	logging.Debug("Sent %d bytes in %v", written, time.Since(start))
	return written, nil
}

// writeError maps a deadline hit on the connection to ErrWriteTimeout. The
// response is buffered, so it can surface from either Write or Flush.
func writeError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrWriteTimeout
	}
	return err
}
