package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
)

// DefaultMemoryRatio is the share of the container limit used for the Go heap.
// The rest is left to FFmpeg.
const DefaultMemoryRatio = 0.5

// Configuration sources reported in Result.Source.
const (
	SourceGOMEMLIMIT  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceNone        = "none"
)

// Result describes what Configure did.
type Result struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64

	// Warnings holds rejected values so the caller can log them once the
	// startup banner is out.
	Warnings []string
}

// ConfigureFromEnv calls Configure with the process environment.
func ConfigureFromEnv() Result {
	return Configure(os.Getenv)
}

// Configure sets the runtime memory limit from MEMORY_LIMIT and MEMORY_RATIO
// as returned by getenv. Call it before significant allocations.
func Configure(getenv func(string) string) Result {
	if getenv("GOMEMLIMIT") != "" {
		res := Result{Source: SourceGOMEMLIMIT}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.Configured = true
			res.GoMemLimit = limit
		}
		return res
	}

	res := Result{Source: SourceNone}

	raw := getenv("MEMORY_LIMIT")
	if raw == "" {
		return res
	}

	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		res.Warnings = append(res.Warnings, "invalid MEMORY_LIMIT "+strconv.Quote(raw))
		return res
	}

	ratio := DefaultMemoryRatio
	if r := getenv("MEMORY_RATIO"); r != "" {
		parsed, err := strconv.ParseFloat(r, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			res.Warnings = append(res.Warnings, "invalid MEMORY_RATIO "+strconv.Quote(r)+", using default")
		} else {
			ratio = parsed
		}
	}

	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)

	res.Configured = true
	res.Source = SourceMemoryLimit
	res.ContainerLimit = limit
	res.GoMemLimit = goLimit
	res.Ratio = ratio
	return res
}
