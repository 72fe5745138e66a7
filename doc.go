// Package main provides the entry point for the Media Converter application.
//
// Media Converter is a small self-hosted web utility: upload a file, pick a
// target format, get the converted file back. Every conversion is a single
// FFmpeg run. When the host exposes VA-API the video encoder is tried first
// and the software encoder (libx264) is used if it fails.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads .env and environment variables, validates directories
//  2. Memory Configuration: sets GOMEMLIMIT from the environment or the cgroup limit
//  3. Workspace Initialization: purges workspaces left behind by a previous run
//  4. History Database: opens the SQLite conversion history (optional)
//  5. Transcoder: locates FFmpeg and probes hardware acceleration
//  6. HTTP Server Setup: configures routes and middleware, then starts serving
//  7. Graceful Shutdown: on SIGINT/SIGTERM stops FFmpeg, drains requests
//     and waits for archive uploads
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Static upload page
//     - POST /api/convert and the read-only catalog and history endpoints
//     - Health, liveness, readiness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
// Server:
//
//   - PORT: HTTP port (default: 8080)
//   - METRICS_PORT: metrics port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - STATIC_DIR: directory with the upload page (default: ./static)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - LOG_STATIC_FILES, LOG_HEALTH_CHECKS: include these in the access log
//
// Conversion:
//
//   - TEMP_DIR: workspace root (default: ./temp)
//   - KEEP_WORK_FILES: keep workspaces after each request (default: false)
//   - FFMPEG_PATH: FFmpeg binary (default: ffmpeg)
//   - FORCE_SOFTWARE_ENCODING: never try VA-API (default: false)
//   - VAAPI_DEVICE: render node (default: /dev/dri/renderD128)
//   - VIDEO_QUALITY: libx264 CRF, 0-51 (default: 18)
//   - X264_PRESET: libx264 preset (default: slow)
//   - PRESERVE_METADATA: copy source metadata into the output (default: true)
//   - CONVERT_TIMEOUT: FFmpeg time limit, seconds or a duration (default: none)
//   - MAX_UPLOAD_SIZE_MB: upload limit (default: 2048)
//
// History and archive:
//
//   - DATABASE_DIR: history database directory (default: ./data)
//   - HISTORY_ENABLED: record conversions (default: true)
//   - HISTORY_RETENTION_DAYS: prune older records at startup, 0 keeps all (default: 90)
//   - ARCHIVE_S3_BUCKET, ARCHIVE_S3_REGION, ARCHIVE_S3_PREFIX, ARCHIVE_S3_ENDPOINT,
//     ARCHIVE_S3_ACCESS_KEY, ARCHIVE_S3_SECRET_KEY: copy outputs to S3
//
// Authentication:
//
//   - AUTH_USERNAME: basic auth user (default: admin)
//   - AUTH_PASSWORD_HASH: bcrypt hash; auth is off when unset. See cmd/hashpw.
//
// Memory:
//
//   - GOMEMLIMIT: used as-is when set
//   - MEMORY_LIMIT: container limit in bytes, overrides cgroup detection
//   - MEMORY_RATIO: share of the limit given to Go (default: 0.5)
package main
