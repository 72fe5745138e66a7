// Package middleware provides HTTP middleware for the media converter.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with the conversion
//     request ID when the handler set one
//   - gzip compression for text responses; converted files are never buffered
//   - Prometheus request metrics labelled by route template
//   - Optional HTTP basic auth checked against a bcrypt hash
package middleware
