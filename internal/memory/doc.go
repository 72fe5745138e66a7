// Package memory sets the Go runtime memory limit for containerized
// deployments.
//
// GOMAXPROCS follows cgroup CPU limits automatically but GOMEMLIMIT does not.
// A converter also shares its container with FFmpeg child processes, whose
// memory never shows up in the Go heap, so only a fraction of the container
// limit is handed to the runtime.
//
// Environment variables:
//
//   - GOMEMLIMIT: standard Go variable, read by the runtime at startup.
//     When set it wins and is only reported.
//   - MEMORY_LIMIT: container limit in bytes, usually injected through the
//     Kubernetes Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, between 0 and
//     1 (default 0.5).
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
package memory
