package transcoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"media-converter/internal/formats"
	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

var (
	// ErrAccelerationUnavailable means the accelerated variant cannot be used
	// for a job. It never fails a request; the software variant runs instead.
	ErrAccelerationUnavailable = errors.New("hardware acceleration unavailable")

	// ErrCommandFailed wraps a non-zero FFmpeg exit or an exec error.
	ErrCommandFailed = errors.New("ffmpeg command failed")
)

// stderrTailBytes limits how much FFmpeg stderr is carried in errors and logs.
const stderrTailBytes = 2048

// AccelBackend is the acceleration method the accelerated variant requires.
const AccelBackend = HWAccelVAAPI

// Variant is one of the two FFmpeg command shapes.
type Variant string

const (
	// VariantAccelerated decodes and encodes on the GPU through VA-API.
	VariantAccelerated Variant = "accelerated"
	// VariantSoftware encodes on the CPU.
	VariantSoftware Variant = "software"
)

// Config controls command construction.
type Config struct {
	FFmpegPath       string
	ForceSoftware    bool
	VAAPIDevice      string
	Quality          int
	Preset           string
	PreserveMetadata bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:       "ffmpeg",
		VAAPIDevice:      "/dev/dri/renderD128",
		Quality:          18,
		Preset:           "slow",
		PreserveMetadata: true,
	}
}

// Job is one conversion: read Input, write Output.
type Job struct {
	ID     string
	Input  string
	Output string
}

// Result describes how a successful job was produced.
type Result struct {
	Variant  Variant
	FellBack bool
	Duration time.Duration
}

// Transcoder runs FFmpeg conversions with an accelerated first attempt and
// a single software fallback.
type Transcoder struct {
	cfg    Config
	prober Prober
	runner Runner

	processes map[string]context.CancelFunc
	processMu sync.Mutex
}

// New creates a Transcoder. A nil prober disables acceleration; a nil runner
// uses os/exec.
func New(cfg Config, prober Prober, runner Runner) *Transcoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Transcoder{
		cfg:       cfg,
		prober:    prober,
		runner:    runner,
		processes: make(map[string]context.CancelFunc),
	}
}

// Config returns the transcoder's settings.
func (t *Transcoder) Config() Config {
	return t.cfg
}

// Capabilities probes for hardware acceleration. It returns an empty set
// when no prober is configured.
func (t *Transcoder) Capabilities(ctx context.Context) (Capabilities, error) {
	if t.prober == nil {
		return NewCapabilities(), nil
	}
	return t.prober.Probe(ctx)
}

// SelectVariant picks the first command variant for input.
func (t *Transcoder) SelectVariant(ctx context.Context, input string) Variant {
	if err := t.accelerationUsable(ctx, input); err != nil {
		logging.Debug("Using software encoding for %s: %v", filepath.Base(input), err)
		return VariantSoftware
	}
	return VariantAccelerated
}

func (t *Transcoder) accelerationUsable(ctx context.Context, input string) error {
	if t.cfg.ForceSoftware {
		return fmt.Errorf("%w: software encoding forced", ErrAccelerationUnavailable)
	}
	if !formats.IsVideo(input) {
		return fmt.Errorf("%w: input is not a video", ErrAccelerationUnavailable)
	}
	if t.prober == nil {
		return fmt.Errorf("%w: no capability prober", ErrAccelerationUnavailable)
	}

	caps, err := t.prober.Probe(ctx)
	if err != nil {
		metrics.HardwareAccelAvailable.Set(0)
		return fmt.Errorf("%w: %v", ErrAccelerationUnavailable, err)
	}
	if !caps.Has(AccelBackend) {
		metrics.ProbesTotal.WithLabelValues("unavailable").Inc()
		metrics.HardwareAccelAvailable.Set(0)
		return fmt.Errorf("%w: %s not listed by ffmpeg", ErrAccelerationUnavailable, AccelBackend)
	}

	metrics.ProbesTotal.WithLabelValues("available").Inc()
	metrics.HardwareAccelAvailable.Set(1)
	return nil
}

// Convert runs job. If the accelerated variant is selected and fails, the
// software variant is run once on the same paths.
func (t *Transcoder) Convert(ctx context.Context, job Job) (*Result, error) {
	log := logging.ForRequest(job.ID)
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.track(job.ID, cancel)
	defer t.untrack(job.ID)

	result := &Result{Variant: t.SelectVariant(ctx, job.Input)}
	log.Info("Converting %s -> %s (%s)", filepath.Base(job.Input), filepath.Base(job.Output), result.Variant)

	err := t.run(ctx, job, result.Variant)
	if err != nil && result.Variant == VariantAccelerated && ctx.Err() == nil {
		log.Warn("Accelerated conversion failed, retrying with software encoding: %v", err)
		metrics.ConversionFallbacksTotal.Inc()

		result.Variant = VariantSoftware
		result.FellBack = true
		err = t.run(ctx, job, VariantSoftware)
	}

	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	log.Info("Converted %s in %v (%s)", filepath.Base(job.Output), result.Duration.Round(time.Millisecond), result.Variant)
	return result, nil
}

func (t *Transcoder) run(ctx context.Context, job Job, v Variant) error {
	var args []string
	if v == VariantAccelerated {
		args = t.buildAcceleratedArgs(job.Input, job.Output)
	} else {
		args = t.buildSoftwareArgs(job.Input, job.Output)
	}

	log := logging.ForRequest(job.ID)
	log.Debug("Running %s %v", t.cfg.FFmpegPath, args)

	_, stderr, err := t.runner.Run(ctx, t.cfg.FFmpegPath, args...)
	if len(stderr) > 0 {
		log.Debug("FFmpeg stderr (%s): %s", v, tail(stderr, stderrTailBytes))
	}

	if err != nil {
		metrics.CommandRunsTotal.WithLabelValues(string(v), metrics.StatusFailed).Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w (%s): %w", ErrCommandFailed, v, ctxErr)
		}
		return fmt.Errorf("%w (%s): %v: %s", ErrCommandFailed, v, err, tail(stderr, stderrTailBytes))
	}

	metrics.CommandRunsTotal.WithLabelValues(string(v), metrics.StatusSuccess).Inc()
	return nil
}

// buildAcceleratedArgs returns the VA-API command line.
func (t *Transcoder) buildAcceleratedArgs(input, output string) []string {
	return []string{
		"-hide_banner", "-nostdin",
		"-hwaccel", string(AccelBackend),
		"-vaapi_device", t.cfg.VAAPIDevice,
		"-i", input,
		"-vf", "format=nv12,hwupload",
		"-c:v", "h264_vaapi",
		"-qp", strconv.Itoa(t.cfg.Quality),
		"-map_metadata", t.metadataSource(),
		"-y", output,
	}
}

// buildSoftwareArgs returns the CPU command line. Video targets get explicit
// x264 settings; other targets let FFmpeg pick codecs from the extension.
func (t *Transcoder) buildSoftwareArgs(input, output string) []string {
	args := []string{"-hide_banner", "-nostdin", "-i", input}

	if c, ok := formats.CategoryOf(formats.Extension(output)); ok && c == formats.CategoryVideo {
		args = append(args,
			"-c:v", "libx264",
			"-preset", t.cfg.Preset,
			"-crf", strconv.Itoa(t.cfg.Quality),
		)
	}

	return append(args, "-map_metadata", "0", "-y", output)
}

func (t *Transcoder) metadataSource() string {
	if t.cfg.PreserveMetadata {
		return "0"
	}
	return "-1"
}

// Version returns the first line of `ffmpeg -version`.
func (t *Transcoder) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := t.runner.Run(ctx, t.cfg.FFmpegPath, "-hide_banner", "-version")
	if err != nil {
		return "", fmt.Errorf("ffmpeg -version: %w: %s", err, tail(stderr, stderrTailBytes))
	}
	for i, b := range stdout {
		if b == '\n' {
			return string(stdout[:i]), nil
		}
	}
	return string(stdout), nil
}

func (t *Transcoder) track(id string, cancel context.CancelFunc) {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	t.processes[id] = cancel
}

func (t *Transcoder) untrack(id string) {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	delete(t.processes, id)
}

// Active returns the number of conversions currently running.
func (t *Transcoder) Active() int {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	return len(t.processes)
}

// Cleanup stops all active conversions.
func (t *Transcoder) Cleanup() {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	for id, cancel := range t.processes {
		logging.Info("Killing conversion process for request %s", id)
		cancel()
	}
}

// tail returns at most n trailing bytes of b as a string.
func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
