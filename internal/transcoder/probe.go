package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// HWAccel is a hardware acceleration method as named by `ffmpeg -hwaccels`.
type HWAccel string

const (
	// HWAccelVAAPI is the Video Acceleration API (Intel/AMD on Linux).
	HWAccelVAAPI HWAccel = "vaapi"
	// HWAccelCUDA is NVIDIA CUDA/NVDEC.
	HWAccelCUDA HWAccel = "cuda"
	// HWAccelQSV is Intel Quick Sync Video.
	HWAccelQSV HWAccel = "qsv"
	// HWAccelVideoToolbox is Apple VideoToolbox.
	HWAccelVideoToolbox HWAccel = "videotoolbox"
)

// Capabilities is the set of acceleration methods FFmpeg reports.
type Capabilities map[HWAccel]struct{}

// NewCapabilities builds a capability set from the given methods.
func NewCapabilities(accels ...HWAccel) Capabilities {
	caps := make(Capabilities, len(accels))
	for _, a := range accels {
		caps[a] = struct{}{}
	}
	return caps
}

// Has reports whether accel is in the set.
func (c Capabilities) Has(accel HWAccel) bool {
	_, ok := c[accel]
	return ok
}

// List returns the methods in the set, sorted by name.
func (c Capabilities) List() []HWAccel {
	out := make([]HWAccel, 0, len(c))
	for a := range c {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Prober reports which hardware acceleration methods are usable.
type Prober interface {
	Probe(ctx context.Context) (Capabilities, error)
}

// FFmpegProber asks the FFmpeg binary for its acceleration methods.
type FFmpegProber struct {
	FFmpegPath string
	Runner     Runner
}

// NewFFmpegProber returns a prober that runs ffmpegPath with the exec runner.
func NewFFmpegProber(ffmpegPath string) *FFmpegProber {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProber{FFmpegPath: ffmpegPath, Runner: ExecRunner{}}
}

// Probe runs `ffmpeg -hide_banner -hwaccels` and parses its output.
func (p *FFmpegProber) Probe(ctx context.Context) (Capabilities, error) {
	stdout, stderr, err := p.Runner.Run(ctx, p.FFmpegPath, "-hide_banner", "-hwaccels")
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ffmpeg -hwaccels: %w: %s", err, tail(stderr, stderrTailBytes))
	}

	caps := parseHWAccels(stdout)
	logging.Debug("FFmpeg reports hardware acceleration methods: %v", caps.List())
	return caps, nil
}

// parseHWAccels reads one method name per line, skipping the
// "Hardware acceleration methods:" header and blank lines.
func parseHWAccels(out []byte) Capabilities {
	caps := make(Capabilities)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasSuffix(line, ":") || strings.ContainsAny(line, " \t") {
			continue
		}
		caps[HWAccel(strings.ToLower(line))] = struct{}{}
	}
	return caps
}

// CachedProber memoises the first successful probe of the wrapped prober.
// Failed probes are not cached, so a later request probes again.
type CachedProber struct {
	prober Prober

	mu     sync.Mutex
	caps   Capabilities
	cached bool
}

// NewCachedProber wraps p.
func NewCachedProber(p Prober) *CachedProber {
	return &CachedProber{prober: p}
}

// Probe implements Prober.
func (c *CachedProber) Probe(ctx context.Context) (Capabilities, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached {
		return c.caps, nil
	}

	caps, err := c.prober.Probe(ctx)
	if err != nil {
		return nil, err
	}

	c.caps = caps
	c.cached = true
	return caps, nil
}
