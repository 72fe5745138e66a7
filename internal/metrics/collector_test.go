package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{TotalConversions: 10, Succeeded: 8, Failed: 2, Fallbacks: 3},
	}

	collector := NewCollector(provider, "/tmp/test.db", 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}
	if collector.dbPath != "/tmp/test.db" {
		t.Errorf("dbPath = %q, want /tmp/test.db", collector.dbPath)
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", collector.interval)
	}
	if collector.stopChan == nil {
		t.Error("stopChan should be initialized")
	}
}

func TestCollectorCollectHistoryStats(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{TotalConversions: 12, Succeeded: 9, Failed: 3},
	}

	collector := NewCollector(provider, "", time.Minute)
	collector.collect()

	if got := testutil.ToFloat64(HistoryConversions.WithLabelValues(StatusSuccess)); got != 9 {
		t.Errorf("succeeded gauge = %v, want 9", got)
	}
	if got := testutil.ToFloat64(HistoryConversions.WithLabelValues(StatusFailed)); got != 3 {
		t.Errorf("failed gauge = %v, want 3", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	collector := NewCollector(nil, "", time.Minute)

	// Must not panic when history is disabled.
	collector.collect()
}

func TestCollectorDBSize(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	if err := os.WriteFile(dbPath, make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("failed to write db file: %v", err)
	}
	if err := os.WriteFile(dbPath+"-wal", make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to write wal file: %v", err)
	}

	collector := NewCollector(nil, dbPath, time.Minute)
	collector.collectDBSize()

	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("main")); got != 4096 {
		t.Errorf("main size = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("wal")); got != 1024 {
		t.Errorf("wal size = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("shm")); got != 0 {
		t.Errorf("shm size = %v, want 0 for missing file", got)
	}
}

func TestWorkDirUsage(t *testing.T) {
	dir := t.TempDir()

	for _, ws := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, ws), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "input.mov"), make([]byte, 100), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b", "input.mp3"), make([]byte, 50), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	size, count := workDirUsage(dir)
	if size != 150 {
		t.Errorf("size = %d, want 150", size)
	}
	if count != 2 {
		t.Errorf("workspaces = %d, want 2", count)
	}
}

func TestWorkDirUsageMissingDir(t *testing.T) {
	size, count := workDirUsage(filepath.Join(t.TempDir(), "does-not-exist"))
	if size != 0 || count != 0 {
		t.Errorf("expected zero usage for missing dir, got size=%d count=%d", size, count)
	}
}

func TestCollectorWorkspaceGauges(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "req-1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "req-1", "in.mp4"), make([]byte, 256), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	collector := NewCollector(nil, "", time.Minute)
	collector.SetWorkDir(dir)
	collector.collectWorkspaceSize()

	if got := testutil.ToFloat64(WorkspaceSizeBytes); got != 256 {
		t.Errorf("workspace size = %v, want 256", got)
	}
	if got := testutil.ToFloat64(WorkspacesActive); got != 1 {
		t.Errorf("active workspaces = %v, want 1", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	collector := NewCollector(&mockStatsProvider{}, "", 10*time.Millisecond)
	collector.Start()

	time.Sleep(30 * time.Millisecond)

	collector.Stop()
	// Second Stop must not panic on a closed channel.
	collector.Stop()
}
