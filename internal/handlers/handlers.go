package handlers

import (
	"context"
	"time"

	"media-converter/internal/converter"
	"media-converter/internal/database"
	"media-converter/internal/streaming"
	"media-converter/internal/transcoder"
)

// Converter performs one conversion request.
type Converter interface {
	Convert(ctx context.Context, req converter.Request) (*converter.Output, error)
}

// Transcoder reports what the FFmpeg layer can do right now.
type Transcoder interface {
	Capabilities(ctx context.Context) (transcoder.Capabilities, error)
	Config() transcoder.Config
	Active() int
}

// Workspaces is the upload storage the converter writes to.
type Workspaces interface {
	EnsureRoot() error
}

// History is the read side of the conversion history.
type History interface {
	RecentConversions(ctx context.Context, limit int) ([]database.Conversion, error)
	Stats(ctx context.Context) (database.HistoryStats, error)
	Ping(ctx context.Context) error
}

// Handlers holds the dependencies of the HTTP API.
type Handlers struct {
	converter      Converter
	transcoder     Transcoder
	workspaces     Workspaces
	history        History
	maxUploadBytes int64
	sendConfig     streaming.Config
	startTime      time.Time
	ffmpegVersion  string
}

// New creates the handlers. history may be nil when history is disabled.
// maxUploadBytes of zero accepts any size.
func New(conv Converter, trans Transcoder, workspaces Workspaces, history History, maxUploadBytes int64) *Handlers {
	return &Handlers{
		converter:      conv,
		transcoder:     trans,
		workspaces:     workspaces,
		history:        history,
		maxUploadBytes: maxUploadBytes,
		sendConfig:     streaming.DefaultConfig(),
		startTime:      time.Now(),
	}
}
