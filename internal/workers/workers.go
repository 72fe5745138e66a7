package workers

import (
	"context"
	"runtime"
)

// Count returns a worker count scaled from the CPUs available to the
// process. It respects container CPU limits via GOMAXPROCS.
//
// The multiplier adjusts for task characteristics; the limit caps the result
// (0 for no limit). The result is never below 1.
func Count(multiplier float64, limit int) int {
	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForConversions returns how many FFmpeg runs may execute at once. A positive
// override is used as-is; otherwise one run per two CPUs, since libx264 is
// itself multithreaded.
func ForConversions(override int) int {
	if override > 0 {
		return override
	}
	return Count(0.5, 0)
}

// Slots bounds how many callers hold a slot at the same time.
type Slots struct {
	ch chan struct{}
}

// NewSlots creates n slots. n < 1 is treated as 1.
func NewSlots(n int) *Slots {
	if n < 1 {
		n = 1
	}
	return &Slots{ch: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done. The returned function
// releases the slot and must be called exactly once.
func (s *Slots) Acquire(ctx context.Context) (func(), error) {
	select {
	case s.ch <- struct{}{}:
		return func() { <-s.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
