package startup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-converter/internal/archive"
	"media-converter/internal/database"
	"media-converter/internal/logging"
	"media-converter/internal/memory"
	"media-converter/internal/transcoder"
	"media-converter/internal/workers"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Defaults for values that are validated after parsing.
const (
	defaultVideoQuality  = 18
	defaultX264Preset    = "slow"
	defaultMaxUploadMB   = 2048
	defaultRetentionDays = 90
)

var x264Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Port           string
	MetricsPort    string
	MetricsEnabled bool
	StaticDir      string

	TempDir       string
	KeepWorkFiles bool

	DatabaseDir      string
	HistoryEnabled   bool
	HistoryRetention time.Duration

	FFmpegPath       string
	ForceSoftware    bool
	VAAPIDevice      string
	VideoQuality     int
	X264Preset       string
	PreserveMetadata bool
	ConvertTimeout   time.Duration
	MaxUploadBytes   int64
	MaxConcurrent    int

	AuthUsername     string
	AuthPasswordHash string

	Archive archive.Config

	LogStaticFiles  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
}

// AuthEnabled reports whether HTTP basic auth is configured.
func (c *Config) AuthEnabled() bool {
	return c.AuthPasswordHash != ""
}

// TranscoderConfig returns the FFmpeg settings for transcoder.New.
func (c *Config) TranscoderConfig() transcoder.Config {
	return transcoder.Config{
		FFmpegPath:       c.FFmpegPath,
		ForceSoftware:    c.ForceSoftware,
		VAAPIDevice:      c.VAAPIDevice,
		Quality:          c.VideoQuality,
		Preset:           c.X264Preset,
		PreserveMetadata: c.PreserveMetadata,
	}
}

// LoadConfig loads .env if present, then reads and validates configuration
// from environment variables. Variables already set in the environment win
// over .env.
func LoadConfig() (*Config, error) {
	dotenvErr := godotenv.Load()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	switch {
	case dotenvErr == nil:
		logging.Info("  Loaded .env")
	case errors.Is(dotenvErr, fs.ErrNotExist):
		logging.Debug("  No .env file found")
	default:
		logging.Warn("  Failed to load .env: %v", dotenvErr)
	}

	config := &Config{
		Port:             getEnv("PORT", "8080"),
		MetricsPort:      getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		StaticDir:        getEnv("STATIC_DIR", "./static"),
		TempDir:          getEnv("TEMP_DIR", "./temp"),
		KeepWorkFiles:    getEnvBool("KEEP_WORK_FILES", false),
		DatabaseDir:      getEnv("DATABASE_DIR", "./data"),
		HistoryEnabled:   getEnvBool("HISTORY_ENABLED", true),
		HistoryRetention: time.Duration(getEnvInt("HISTORY_RETENTION_DAYS", defaultRetentionDays)) * 24 * time.Hour,
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		ForceSoftware:    getEnvBool("FORCE_SOFTWARE_ENCODING", false),
		VAAPIDevice:      getEnv("VAAPI_DEVICE", "/dev/dri/renderD128"),
		VideoQuality:     getEnvInt("VIDEO_QUALITY", defaultVideoQuality),
		X264Preset:       strings.ToLower(getEnv("X264_PRESET", defaultX264Preset)),
		PreserveMetadata: getEnvBool("PRESERVE_METADATA", true),
		ConvertTimeout:   getEnvDuration("CONVERT_TIMEOUT", 0),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_SIZE_MB", defaultMaxUploadMB)) << 20,
		MaxConcurrent:    workers.ForConversions(getEnvInt("MAX_CONCURRENT_CONVERSIONS", 0)),
		AuthUsername:     getEnv("AUTH_USERNAME", "admin"),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		Archive: archive.Config{
			Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
			Region:    getEnv("ARCHIVE_S3_REGION", ""),
			Prefix:    getEnv("ARCHIVE_S3_PREFIX", ""),
			Endpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
			AccessKey: getEnv("ARCHIVE_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_S3_SECRET_KEY", ""),
		},
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	if config.VideoQuality < 0 || config.VideoQuality > 51 {
		logging.Warn("  Invalid VIDEO_QUALITY %d (0-51), using default: %d", config.VideoQuality, defaultVideoQuality)
		config.VideoQuality = defaultVideoQuality
	}
	if !validPreset(config.X264Preset) {
		logging.Warn("  Invalid X264_PRESET %q, using default: %s", config.X264Preset, defaultX264Preset)
		config.X264Preset = defaultX264Preset
	}
	if config.MaxUploadBytes < 0 {
		logging.Warn("  Invalid MAX_UPLOAD_SIZE_MB, using default: %d", defaultMaxUploadMB)
		config.MaxUploadBytes = defaultMaxUploadMB << 20
	}
	if config.HistoryRetention < 0 {
		config.HistoryRetention = 0
	}

	logging.Info("  PORT:                        %s", config.Port)
	logging.Info("  METRICS_PORT:                %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:             %v", config.MetricsEnabled)
	logging.Info("  STATIC_DIR:                  %s", config.StaticDir)
	logging.Info("  TEMP_DIR:                    %s", config.TempDir)
	logging.Info("  KEEP_WORK_FILES:             %v", config.KeepWorkFiles)
	logging.Info("  DATABASE_DIR:                %s", config.DatabaseDir)
	logging.Info("  HISTORY_ENABLED:             %v", config.HistoryEnabled)
	logging.Info("  HISTORY_RETENTION_DAYS:      %d", int(config.HistoryRetention.Hours()/24))
	logging.Info("  FFMPEG_PATH:                 %s", config.FFmpegPath)
	logging.Info("  FORCE_SOFTWARE_ENCODING:     %v", config.ForceSoftware)
	logging.Info("  VAAPI_DEVICE:                %s", config.VAAPIDevice)
	logging.Info("  VIDEO_QUALITY:               %d", config.VideoQuality)
	logging.Info("  X264_PRESET:                 %s", config.X264Preset)
	logging.Info("  PRESERVE_METADATA:           %v", config.PreserveMetadata)
	logging.Info("  CONVERT_TIMEOUT:             %s", durationString(config.ConvertTimeout))
	logging.Info("  MAX_UPLOAD_SIZE_MB:          %s", formatBytes(config.MaxUploadBytes))
	logging.Info("  MAX_CONCURRENT_CONVERSIONS:  %d", config.MaxConcurrent)
	logging.Info("  LOG_STATIC_FILES:            %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:           %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:                   %s", logging.GetLevel())

	if err := config.Archive.Validate(); err != nil {
		return nil, err
	}

	if config.AuthEnabled() {
		if _, err := bcrypt.Cost([]byte(config.AuthPasswordHash)); err != nil {
			return nil, fmt.Errorf("AUTH_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	tempDir, err := filepath.Abs(config.TempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp directory path: %w", err)
	}
	config.TempDir = tempDir
	logging.Info("  Temp directory (absolute): %s", tempDir)

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	config.DatabasePath = filepath.Join(databaseDir, database.FileName)
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// Uploads and FFmpeg output live under the temp directory (required)
	if err := ensureDirectory(tempDir, "temp"); err != nil {
		return nil, fmt.Errorf("temp directory error: %w", err)
	}
	logging.Debug("  Testing temp directory write access...")
	if err := testWriteAccess(tempDir); err != nil {
		return nil, fmt.Errorf("temp directory is not writable (required for conversions): %w", err)
	}
	logging.Info("  [OK] Temp directory is writable")

	// Conversion history (optional)
	if config.HistoryEnabled {
		config.HistoryEnabled = setupOptionalDir(databaseDir, "history")
	}

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Conversions: ENABLED (required)")
	logging.Info("    History:     %s", enabledString(config.HistoryEnabled))
	logging.Info("    Archive:     %s", enabledString(config.Archive.Enabled()))
	logging.Info("    Auth:        %s", enabledString(config.AuthEnabled()))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func validPreset(preset string) bool {
	for _, p := range x264Presets {
		if p == preset {
			return true
		}
	}
	return false
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func durationString(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}

// LogMemoryConfig logs the outcome of memory.Configure
func LogMemoryConfig(res memory.Result) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	for _, w := range res.Warnings {
		logging.Warn("  %s", w)
	}

	switch {
	case res.Source == memory.SourceGOMEMLIMIT && res.Configured:
		logging.Info("  GOMEMLIMIT set via environment: %s", formatBytes(res.GoMemLimit))
	case res.Source == memory.SourceGOMEMLIMIT:
		logging.Info("  GOMEMLIMIT set via environment")
	case res.Configured:
		logging.Info("  GOMEMLIMIT:                  %s (%.0f%% of %s container limit)",
			formatBytes(res.GoMemLimit), res.Ratio*100, formatBytes(res.ContainerLimit))
	default:
		logging.Info("  Memory limit not configured (set MEMORY_LIMIT or GOMEMLIMIT)")
	}
}

// LogDatabaseInit logs history database initialization
func LogDatabaseInit(duration time.Duration, pruned int64) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] History database initialized in %v", duration)
	if pruned > 0 {
		logging.Info("  Pruned %d expired conversion records", pruned)
	}
}

// LogHistoryDisabled logs that conversions will not be recorded
func LogHistoryDisabled(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  History disabled (%s)", reason)
}

// LogWorkspaceInit logs the workspace root and the result of the stale purge
func LogWorkspaceInit(root string, keep bool, removed int, freed int64) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("WORKSPACE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Workspace root: %s", root)
	if keep {
		logging.Warn("  KEEP_WORK_FILES is on; uploads and outputs will not be deleted")
		return
	}
	if removed > 0 {
		logging.Info("  Removed %d stale workspaces (%s)", removed, formatBytes(freed))
	}
}

// LogTranscoderInit checks FFmpeg and logs the detected acceleration methods.
// It returns the FFmpeg version line, or "" when FFmpeg could not be run.
func LogTranscoderInit(ctx context.Context, t *transcoder.Transcoder) string {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("TRANSCODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	cfg := t.Config()

	if err := checkFFmpeg(cfg.FFmpegPath); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Conversions will fail until FFmpeg is installed")
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	version, err := t.Version(ctx)
	if err != nil {
		logging.Warn("  Failed to get FFmpeg version: %v", err)
	} else {
		logging.Info("  [OK] %s", version)
	}

	if cfg.ForceSoftware {
		logging.Info("  Hardware acceleration: DISABLED (FORCE_SOFTWARE_ENCODING)")
		return version
	}

	caps, err := t.Capabilities(ctx)
	if err != nil {
		logging.Warn("  Hardware acceleration probe failed: %v", err)
		logging.Warn("  Video conversions will use software encoding")
		return version
	}

	methods := make([]string, 0, len(caps))
	for _, a := range caps.List() {
		methods = append(methods, string(a))
	}
	if len(methods) == 0 {
		methods = append(methods, "none")
	}
	logging.Info("  Acceleration methods: %s", strings.Join(methods, ", "))

	if caps.Has(transcoder.AccelBackend) {
		logging.Info("  [OK] %s available (device %s)", transcoder.AccelBackend, cfg.VAAPIDevice)
	} else {
		logging.Info("  %s not available; video conversions will use software encoding", transcoder.AccelBackend)
	}
	return version
}

// LogArchiveInit logs the archive destination
func LogArchiveInit(cfg archive.Config) {
	if !cfg.Enabled() {
		return
	}
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("ARCHIVE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Bucket:   %s", cfg.Bucket)
	logging.Info("  Region:   %s", cfg.Region)
	if cfg.Prefix != "" {
		logging.Info("  Prefix:   %s", cfg.Prefix)
	}
	if cfg.Endpoint != "" {
		logging.Info("  Endpoint: %s", cfg.Endpoint)
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// Prefix-only routes such as the static file server
			pathTemplate, err = route.GetPathRegexp()
			if err != nil {
				return nil
			}
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks, authEnabled bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	if authEnabled {
		logging.Info("  Basic auth: ON (health endpoints exempt)")
	} else {
		logging.Info("  Basic auth: OFF (set AUTH_PASSWORD_HASH to enable)")
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___          ______                              __
   /  |/  /__  ____/ (_)___ _   / ____/___  ____ _   _____  _____/ /____  _____
  / /|_/ / _ \/ __  / / __ '/  / /   / __ \/ __ \ | / / _ \/ ___/ __/ _ \/ ___/
 / /  / /  __/ /_/ / / /_/ /  / /___/ /_/ / / / / |/ /  __/ /  / /_/  __/ /
/_/  /_/\___/\__,_/_/\__,_/   \____/\____/_/ /_/|___/\___/_/   \__/\___/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:                  %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkFFmpeg(ffmpegPath string) error {
	path, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", ffmpegPath)
	}
	logging.Debug("  FFmpeg path: %s", path)
	return nil
}

// formatBytes formats bytes into a human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration accepts Go durations ("90s", "10m") and bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
