/*
Package workers sizes and enforces the limit on concurrent FFmpeg runs.

When running in a container the number of usable CPUs may be limited by
cgroup constraints. runtime.NumCPU() still returns the host count, while
runtime.GOMAXPROCS(0) follows the container limit (Go 1.19+), so sizing is
based on the latter:

	// Wrong: Returns 64 (host CPUs), ignores container limit
	n := runtime.NumCPU()

	// Correct: Returns 2 (respects container limit)
	n := workers.Count(1.0, 0)

[ForConversions] picks the default for MAX_CONCURRENT_CONVERSIONS and
[Slots] enforces it. Requests that arrive while all slots are busy wait in
Acquire until a slot frees up or their context ends:

	slots := workers.NewSlots(workers.ForConversions(0))

	release, err := slots.Acquire(ctx)
	if err != nil {
		return err // client gone or timed out while queued
	}
	defer release()
*/
package workers
