// Package handlers provides HTTP request handlers for the media converter API.
//
// It includes handlers for:
//   - File conversion (POST /api/convert)
//   - The format catalog and hardware acceleration capabilities
//   - Conversion history, when the history database is enabled
//   - Health, readiness, version and Prometheus metrics
//
// Error responses are JSON objects with a single "error" field holding a
// fixed, client-safe message; the underlying cause is only logged.
package handlers
