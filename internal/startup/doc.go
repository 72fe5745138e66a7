// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from environment variables by [LoadConfig]. A .env
// file in the working directory is loaded first; variables already present
// in the environment take precedence over it.
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - STATIC_DIR: Directory served at / (default: ./static)
//   - TEMP_DIR: Root for per-request workspaces (default: ./temp)
//   - KEEP_WORK_FILES: Leave workspaces on disk for debugging (default: false)
//   - DATABASE_DIR: Directory for the history database (default: ./data)
//   - HISTORY_ENABLED: Record conversions in SQLite (default: true)
//   - HISTORY_RETENTION_DAYS: Prune older records at startup, 0 keeps all (default: 90)
//   - FFMPEG_PATH: FFmpeg binary (default: ffmpeg)
//   - FORCE_SOFTWARE_ENCODING: Never use VA-API (default: false)
//   - VAAPI_DEVICE: DRM render node (default: /dev/dri/renderD128)
//   - VIDEO_QUALITY: -qp / -crf value, 0-51 (default: 18)
//   - X264_PRESET: libx264 preset (default: slow)
//   - PRESERVE_METADATA: Copy source metadata on the VA-API path (default: true)
//   - CONVERT_TIMEOUT: Upper bound on one FFmpeg run, seconds or Go duration (default: none)
//   - MAX_UPLOAD_SIZE_MB: Largest accepted upload (default: 2048)
//   - AUTH_USERNAME, AUTH_PASSWORD_HASH: HTTP basic auth; empty hash disables it
//   - ARCHIVE_S3_*: Optional S3 archive of converted files
//   - LOG_LEVEL, DEBUG, LOG_STATIC_FILES, LOG_HEALTH_CHECKS: Logging
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// The Log* functions print the sectioned startup report and shutdown steps:
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogTranscoderInit(ctx, trans)
//	startup.LogServerStarted(startup.ServerConfig{...})
package startup
