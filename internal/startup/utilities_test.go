package startup

import (
	"os"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		setEnv   bool
		want     string
	}{
		{"Returns default when env var not set", "", false, "default"},
		{"Returns env value when set", "custom", true, "custom"},
		{"Returns default when env var is empty", "", true, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GETENV", tt.envValue)
			if !tt.setEnv {
				os.Unsetenv("TEST_GETENV")
			}

			if got := getEnv("TEST_GETENV", "default"); got != tt.want {
				t.Errorf("getEnv = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"Unset uses default true", "", true, true},
		{"Unset uses default false", "", false, false},
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"Invalid uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GETENV_BOOL", tt.envValue)

			if got := getEnvBool("TEST_GETENV_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"Unset uses default", "", 18},
		{"Parses value", "23", 23},
		{"Trims spaces", " 7 ", 7},
		{"Negative", "-1", -1},
		{"Invalid uses default", "high", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GETENV_INT", tt.envValue)

			if got := getEnvInt("TEST_GETENV_INT", 18); got != tt.want {
				t.Errorf("getEnvInt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{"Unset uses default", "", time.Minute},
		{"Bare seconds", "300", 5 * time.Minute},
		{"Zero", "0", 0},
		{"Go duration", "1h30m", 90 * time.Minute},
		{"Invalid uses default", "forever", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GETENV_DURATION", tt.envValue)

			if got := getEnvDuration("TEST_GETENV_DURATION", time.Minute); got != tt.want {
				t.Errorf("getEnvDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{2048 << 20, "2.0 GiB"},
		{1 << 40, "1.0 TiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.input); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidPreset(t *testing.T) {
	for _, p := range []string{"ultrafast", "medium", "slow", "veryslow"} {
		if !validPreset(p) {
			t.Errorf("validPreset(%q) = false", p)
		}
	}
	for _, p := range []string{"", "turbo", "Slow"} {
		if validPreset(p) {
			t.Errorf("validPreset(%q) = true", p)
		}
	}
}

func TestDurationString(t *testing.T) {
	if got := durationString(0); got != "none" {
		t.Errorf("durationString(0) = %q", got)
	}
	if got := durationString(90 * time.Second); got != "1m30s" {
		t.Errorf("durationString(90s) = %q", got)
	}
}

func BenchmarkGetEnv(b *testing.B) {
	b.Setenv("BENCH_GETENV", "value")
	for i := 0; i < b.N; i++ {
		_ = getEnv("BENCH_GETENV", "default")
	}
}
