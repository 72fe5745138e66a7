package startup

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-converter/internal/archive"
	"media-converter/internal/database"
	"media-converter/internal/memory"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// clearEnv unsets every variable LoadConfig reads so tests start from defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "METRICS_PORT", "METRICS_ENABLED", "STATIC_DIR",
		"TEMP_DIR", "KEEP_WORK_FILES", "DATABASE_DIR", "HISTORY_ENABLED",
		"HISTORY_RETENTION_DAYS", "FFMPEG_PATH", "FORCE_SOFTWARE_ENCODING",
		"VAAPI_DEVICE", "VIDEO_QUALITY", "X264_PRESET", "PRESERVE_METADATA",
		"CONVERT_TIMEOUT", "MAX_UPLOAD_SIZE_MB", "AUTH_USERNAME", "AUTH_PASSWORD_HASH",
		"ARCHIVE_S3_BUCKET", "ARCHIVE_S3_REGION", "ARCHIVE_S3_PREFIX",
		"ARCHIVE_S3_ENDPOINT", "ARCHIVE_S3_ACCESS_KEY", "ARCHIVE_S3_SECRET_KEY",
		"LOG_STATIC_FILES", "LOG_HEALTH_CHECKS", "MAX_CONCURRENT_CONVERSIONS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	tempDir := filepath.Join(t.TempDir(), "temp")
	dbDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("TEMP_DIR", tempDir)
	t.Setenv("DATABASE_DIR", dbDir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" || cfg.MetricsPort != "9090" || !cfg.MetricsEnabled {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.TempDir != tempDir {
		t.Errorf("TempDir = %s, want %s", cfg.TempDir, tempDir)
	}
	if _, err := os.Stat(tempDir); err != nil {
		t.Errorf("temp directory not created: %v", err)
	}
	if cfg.DatabasePath != filepath.Join(dbDir, database.FileName) {
		t.Errorf("DatabasePath = %s", cfg.DatabasePath)
	}
	if !cfg.HistoryEnabled {
		t.Error("history should be enabled when the database directory is writable")
	}
	if cfg.HistoryRetention != 90*24*time.Hour {
		t.Errorf("HistoryRetention = %v", cfg.HistoryRetention)
	}
	if cfg.MaxUploadBytes != 2048<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.ConvertTimeout != 0 {
		t.Errorf("ConvertTimeout = %v, want none", cfg.ConvertTimeout)
	}
	if cfg.MaxConcurrent < 1 {
		t.Errorf("MaxConcurrent = %d, want at least 1", cfg.MaxConcurrent)
	}
	if cfg.AuthEnabled() || cfg.Archive.Enabled() {
		t.Error("auth and archive should be disabled by default")
	}

	tc := cfg.TranscoderConfig()
	if tc.FFmpegPath != "ffmpeg" || tc.ForceSoftware || tc.VAAPIDevice != "/dev/dri/renderD128" ||
		tc.Quality != 18 || tc.Preset != "slow" || !tc.PreserveMetadata {
		t.Errorf("unexpected transcoder config: %+v", tc)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMP_DIR", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("FORCE_SOFTWARE_ENCODING", "true")
	t.Setenv("VIDEO_QUALITY", "23")
	t.Setenv("X264_PRESET", "Fast")
	t.Setenv("CONVERT_TIMEOUT", "90")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "10")
	t.Setenv("HISTORY_RETENTION_DAYS", "0")
	t.Setenv("MAX_CONCURRENT_CONVERSIONS", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.ForceSoftware {
		t.Error("ForceSoftware should be true")
	}
	if cfg.VideoQuality != 23 {
		t.Errorf("VideoQuality = %d", cfg.VideoQuality)
	}
	if cfg.X264Preset != "fast" {
		t.Errorf("X264Preset = %s", cfg.X264Preset)
	}
	if cfg.ConvertTimeout != 90*time.Second {
		t.Errorf("ConvertTimeout = %v", cfg.ConvertTimeout)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.HistoryRetention != 0 {
		t.Errorf("HistoryRetention = %v", cfg.HistoryRetention)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.MaxConcurrent)
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMP_DIR", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("VIDEO_QUALITY", "99")
	t.Setenv("X264_PRESET", "turbo")
	t.Setenv("CONVERT_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.VideoQuality != defaultVideoQuality {
		t.Errorf("VideoQuality = %d", cfg.VideoQuality)
	}
	if cfg.X264Preset != defaultX264Preset {
		t.Errorf("X264Preset = %s", cfg.X264Preset)
	}
	if cfg.ConvertTimeout != 0 {
		t.Errorf("ConvertTimeout = %v", cfg.ConvertTimeout)
	}
}

func TestLoadConfigIncompleteArchive(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMP_DIR", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("ARCHIVE_S3_BUCKET", "converted")

	_, err := LoadConfig()
	if !errors.Is(err, archive.ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig, got %v", err)
	}
}

func TestLoadConfigAuthHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"Valid bcrypt hash", string(hash), false},
		{"Plain password", "secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TEMP_DIR", t.TempDir())
			t.Setenv("DATABASE_DIR", t.TempDir())
			t.Setenv("AUTH_PASSWORD_HASH", tt.hash)

			cfg, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (!cfg.AuthEnabled() || cfg.AuthUsername != "admin") {
				t.Errorf("expected auth enabled for admin, got %+v", cfg)
			}
		})
	}
}

func TestLoadConfigTempDirIsFile(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEMP_DIR", file)
	t.Setenv("DATABASE_DIR", t.TempDir())

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when TEMP_DIR is a file")
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/convert", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("POST").Name("convert")
	r.HandleFunc("/healthz", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("GET", "HEAD")

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3: %+v", len(routes), routes)
	}
	if routes[0].Method != "POST" || routes[0].Path != "/api/convert" || routes[0].Name != "convert" {
		t.Errorf("unexpected first route: %+v", routes[0])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/convert", "api/convert"},
		{"/api/conversions", "api/conversions"},
		{"/healthz", "healthz"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLogMemoryConfig(_ *testing.T) {
	// Should not panic for any source
	LogMemoryConfig(memory.Result{Source: memory.SourceNone})
	LogMemoryConfig(memory.Result{Source: memory.SourceGOMEMLIMIT})
	LogMemoryConfig(memory.Result{
		Configured:     true,
		Source:         memory.SourceMemoryLimit,
		ContainerLimit: 1 << 30,
		GoMemLimit:     1 << 29,
		Ratio:          0.5,
		Warnings:       []string{"invalid MEMORY_RATIO"},
	})
}
