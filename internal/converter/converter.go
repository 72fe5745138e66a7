package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"media-converter/internal/archive"
	"media-converter/internal/database"
	"media-converter/internal/filesystem"
	"media-converter/internal/formats"
	"media-converter/internal/logging"
	"media-converter/internal/metrics"
	"media-converter/internal/transcoder"
	"media-converter/internal/workers"
)

var (
	// ErrBadRequest means the file or the target format is missing.
	ErrBadRequest = errors.New("file or format missing")

	// ErrInvalidFormat means the target format is not a plain extension token.
	ErrInvalidFormat = errors.New("invalid target format")

	// ErrTooLarge means the upload exceeded the configured size limit.
	ErrTooLarge = errors.New("upload too large")

	// ErrConversionFailed means no output could be produced: both command
	// variants failed, or the output could not be read back.
	ErrConversionFailed = errors.New("conversion failed")
)

// archiveTimeout bounds one background archive upload.
const archiveTimeout = 5 * time.Minute

var formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Transcoder runs one FFmpeg job.
type Transcoder interface {
	Convert(ctx context.Context, job transcoder.Job) (*transcoder.Result, error)
}

// History records finished requests.
type History interface {
	RecordConversion(ctx context.Context, c *database.Conversion) error
}

// Request is one upload to convert.
type Request struct {
	Filename string
	Body     io.Reader
	Format   string
}

// Output is a successful conversion.
type Output struct {
	RequestID string
	Filename  string
	Data      []byte
	Variant   transcoder.Variant
	FellBack  bool
}

// Options tunes the service.
type Options struct {
	// MaxUploadBytes rejects larger inputs; zero disables the check.
	MaxUploadBytes int64
	// Timeout bounds the FFmpeg run, including time spent queued for a slot;
	// zero means only the request context applies.
	Timeout time.Duration
	// MaxConcurrent caps simultaneous FFmpeg runs; zero means no cap.
	MaxConcurrent int
}

// Service implements the conversion endpoint's work: it stores the upload in
// a private workspace, runs the transcoder, reads the result back and cleans up.
type Service struct {
	workspaces *filesystem.Manager
	transcoder Transcoder
	history    History
	archiver   archive.Archiver
	slots      *workers.Slots
	opts       Options

	archiveWG sync.WaitGroup
}

// New creates a Service.
func New(workspaces *filesystem.Manager, tc Transcoder, opts Options) *Service {
	s := &Service{
		workspaces: workspaces,
		transcoder: tc,
		opts:       opts,
	}
	if opts.MaxConcurrent > 0 {
		s.slots = workers.NewSlots(opts.MaxConcurrent)
	}
	return s
}

// SetHistory enables recording of every request after its workspace exists.
func (s *Service) SetHistory(h History) {
	s.history = h
}

// SetArchiver enables background uploads of successful outputs.
func (s *Service) SetArchiver(a archive.Archiver) {
	s.archiver = a
}

// NormalizeFormat lowercases format, strips one leading dot and checks that
// what remains is a plain extension token.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	if f == "" {
		return "", ErrBadRequest
	}
	if !formatPattern.MatchString(f) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return f, nil
}

// Convert converts req. Validation errors are returned before anything
// touches the filesystem.
func (s *Service) Convert(ctx context.Context, req Request) (*Output, error) {
	if req.Body == nil || req.Filename == "" || strings.TrimSpace(req.Format) == "" {
		metrics.RequestsRejectedTotal.WithLabelValues("missing_input").Inc()
		return nil, ErrBadRequest
	}

	format, err := NormalizeFormat(req.Format)
	if err != nil {
		metrics.RequestsRejectedTotal.WithLabelValues("invalid_format").Inc()
		return nil, err
	}

	ws, err := s.workspaces.Create()
	if err != nil {
		logging.Error("Failed to create workspace: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	defer s.workspaces.Release(ws)

	rec := &database.Conversion{
		RequestID:    ws.ID,
		SourceName:   filesystem.SafeBaseName(req.Filename),
		TargetFormat: format,
	}
	if c, ok := formats.Classify(rec.SourceName); ok {
		rec.SourceCategory = string(c)
	}

	out, err := s.run(ctx, ws, req.Body, rec)
	s.record(ctx, rec, err)
	if err != nil {
		return nil, err
	}

	s.archiveAsync(ws.ID, out.Filename, out.Data)
	return out, nil
}

func (s *Service) run(ctx context.Context, ws *filesystem.Workspace, body io.Reader, rec *database.Conversion) (*Output, error) {
	log := logging.ForRequest(ws.ID)

	input, n, err := ws.SaveUpload(rec.SourceName, body, s.opts.MaxUploadBytes)
	rec.InputBytes = n
	if err != nil {
		if errors.Is(err, filesystem.ErrUploadTooLarge) {
			metrics.RequestsRejectedTotal.WithLabelValues("too_large").Inc()
			log.Warn("Upload %s exceeds %d bytes", rec.SourceName, s.opts.MaxUploadBytes)
			return nil, ErrTooLarge
		}
		log.Error("Failed to store upload %s: %v", rec.SourceName, err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	metrics.UploadBytes.Observe(float64(n))

	output, err := ws.OutputPath(input, rec.TargetFormat)
	if err != nil {
		log.Error("Failed to prepare output path: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	release, err := s.acquire(ctx)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues(metrics.VariantNone, metrics.StatusFailed).Inc()
		log.Warn("Gave up waiting for a conversion slot: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	metrics.ConversionsInProgress.Inc()
	res, err := s.transcoder.Convert(ctx, transcoder.Job{ID: ws.ID, Input: input, Output: output})
	metrics.ConversionsInProgress.Dec()
	release()

	variant := metrics.VariantNone
	if res != nil {
		variant = string(res.Variant)
		rec.Variant = variant
		rec.FellBack = res.FellBack
		rec.DurationMs = res.Duration.Milliseconds()
		metrics.ConversionDuration.WithLabelValues(variant).Observe(res.Duration.Seconds())
	}

	if err != nil {
		metrics.ConversionsTotal.WithLabelValues(variant, metrics.StatusFailed).Inc()
		log.Error("Conversion of %s to %s failed: %v", rec.SourceName, rec.TargetFormat, err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	data, err := filesystem.ReadFileWithRetry(output, filesystem.DefaultRetryConfig())
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues(variant, metrics.StatusFailed).Inc()
		log.Error("Failed to read converted output %s: %v", output, err)
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	metrics.ConversionsTotal.WithLabelValues(variant, metrics.StatusSuccess).Inc()
	metrics.OutputBytes.Observe(float64(len(data)))
	rec.OutputBytes = int64(len(data))

	return &Output{
		RequestID: ws.ID,
		Filename:  filepath.Base(output),
		Data:      data,
		Variant:   res.Variant,
		FellBack:  res.FellBack,
	}, nil
}

// acquire waits for a free FFmpeg slot when concurrency is capped.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.slots == nil {
		return func() {}, nil
	}

	metrics.ConversionsQueued.Inc()
	defer metrics.ConversionsQueued.Dec()
	return s.slots.Acquire(ctx)
}

func (s *Service) record(ctx context.Context, rec *database.Conversion, convErr error) {
	if s.history == nil {
		return
	}

	rec.Status = database.StatusSuccess
	if convErr != nil {
		rec.Status = database.StatusFailed
		rec.Error = convErr.Error()
	}

	// The client may already be gone; the record is still wanted.
	if err := s.history.RecordConversion(context.WithoutCancel(ctx), rec); err != nil {
		logging.ForRequest(rec.RequestID).Warn("Failed to record conversion: %v", err)
	}
}

func (s *Service) archiveAsync(requestID, filename string, data []byte) {
	if s.archiver == nil {
		return
	}

	key := archive.ObjectKey(time.Now(), requestID, filename)
	contentType := mime.TypeByExtension(formats.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.archiveWG.Add(1)
	go func() {
		defer s.archiveWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := s.archiver.Archive(ctx, key, bytes.NewReader(data), contentType); err != nil {
			logging.ForRequest(requestID).Warn("Archive upload failed: %v", err)
		}
	}()
}

// Wait blocks until background archive uploads finish.
func (s *Service) Wait() {
	s.archiveWG.Wait()
}
