package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// setupTestDB creates a database in a fresh temp directory.
func setupTestDB(t testing.TB) (db *Database, dbPath string) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), FileName)

	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, dbPath
}

func TestRecordQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		err       error
	}{
		{"successful query", "record_conversion", nil},
		{"failed query", "record_conversion", errors.New("test error")},
		{"empty operation name", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must not panic for any label combination.
			recordQuery(tt.operation, time.Now(), tt.err)
		})
	}
}

func TestNewDatabase(t *testing.T) {
	db, dbPath := setupTestDB(t)

	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewDatabaseMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "sub", FileName)

	if _, err := New(context.Background(), dbPath); err == nil {
		t.Error("expected error when the parent directory does not exist")
	}
}

func TestNewDatabaseReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()

	db, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.RecordConversion(ctx, &Conversion{RequestID: "a", SourceName: "a.wav", TargetFormat: "mp3", Status: StatusSuccess}); err != nil {
		t.Fatalf("RecordConversion: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = New(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := db.RecentConversions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConversions: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected history to survive reopen, got %d records", len(got))
	}
}

func TestRecordAndListConversions(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	records := []*Conversion{
		{RequestID: "r1", SourceName: "clip.mov", SourceCategory: "video", TargetFormat: "mp4", Variant: "accelerated", Status: StatusSuccess, InputBytes: 1000, OutputBytes: 800, DurationMs: 1500, CreatedAt: base},
		{RequestID: "r2", SourceName: "clip.mov", SourceCategory: "video", TargetFormat: "avi", Variant: "software", FellBack: true, Status: StatusSuccess, CreatedAt: base.Add(time.Minute)},
		{RequestID: "r3", SourceName: "doc.pdf", SourceCategory: "document", TargetFormat: "csv", Variant: "software", Status: StatusFailed, Error: "ffmpeg command failed", CreatedAt: base.Add(2 * time.Minute)},
	}

	for _, r := range records {
		if err := db.RecordConversion(ctx, r); err != nil {
			t.Fatalf("RecordConversion(%s): %v", r.RequestID, err)
		}
		if r.ID == 0 {
			t.Errorf("expected ID to be set for %s", r.RequestID)
		}
	}

	got, err := db.RecentConversions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConversions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}

	// Newest first.
	if got[0].RequestID != "r3" || got[2].RequestID != "r1" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].RequestID, got[1].RequestID, got[2].RequestID)
	}

	first := got[2]
	if first.SourceName != "clip.mov" || first.SourceCategory != "video" || first.TargetFormat != "mp4" {
		t.Errorf("fields not round-tripped: %+v", first)
	}
	if first.InputBytes != 1000 || first.OutputBytes != 800 || first.DurationMs != 1500 {
		t.Errorf("sizes not round-tripped: %+v", first)
	}
	if !first.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, base)
	}
	if !got[1].FellBack {
		t.Error("FellBack not round-tripped")
	}
	if got[0].Error != "ffmpeg command failed" {
		t.Errorf("Error = %q", got[0].Error)
	}
}

func TestRecordConversionDefaultsCreatedAt(t *testing.T) {
	db, _ := setupTestDB(t)

	c := &Conversion{RequestID: "r1", SourceName: "a.wav", TargetFormat: "mp3", Status: StatusSuccess}
	before := time.Now()
	if err := db.RecordConversion(context.Background(), c); err != nil {
		t.Fatalf("RecordConversion: %v", err)
	}
	if c.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("CreatedAt not defaulted to now: %v", c.CreatedAt)
	}
}

func TestRecordConversionDuplicateRequestID(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	c := Conversion{RequestID: "dup", SourceName: "a.wav", TargetFormat: "mp3", Status: StatusSuccess}
	if err := db.RecordConversion(ctx, &c); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	c2 := c
	if err := db.RecordConversion(ctx, &c2); err == nil {
		t.Error("expected unique constraint error for duplicate request ID")
	}
}

func TestRecentConversionsLimit(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := &Conversion{RequestID: fmt.Sprintf("r%d", i), SourceName: "a.wav", TargetFormat: "mp3", Status: StatusSuccess}
		if err := db.RecordConversion(ctx, c); err != nil {
			t.Fatalf("RecordConversion: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"Explicit limit", 2, 2},
		{"Zero uses default", 0, 5},
		{"Negative uses default", -1, 5},
		{"Over max is capped", MaxHistoryLimit + 100, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.RecentConversions(ctx, tt.limit)
			if err != nil {
				t.Fatalf("RecentConversions: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRecentConversionsEmpty(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.RecentConversions(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentConversions: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStats(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats on empty db: %v", err)
	}
	if empty != (HistoryStats{}) {
		t.Errorf("expected zero stats, got %+v", empty)
	}

	for i, c := range []Conversion{
		{Status: StatusSuccess},
		{Status: StatusSuccess, FellBack: true},
		{Status: StatusFailed, FellBack: true},
		{Status: StatusFailed},
		{Status: StatusSuccess},
	} {
		c.RequestID = fmt.Sprintf("r%d", i)
		c.SourceName = "clip.mov"
		c.TargetFormat = "mp4"
		if err := db.RecordConversion(ctx, &c); err != nil {
			t.Fatalf("RecordConversion: %v", err)
		}
	}

	got, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := HistoryStats{Total: 5, Succeeded: 3, Failed: 2, Fallbacks: 2}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}

	ms := db.GetStats()
	if ms.TotalConversions != 5 || ms.Succeeded != 3 || ms.Failed != 2 || ms.Fallbacks != 2 {
		t.Errorf("GetStats = %+v", ms)
	}
}

func TestPruneOlderThan(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	for i, age := range []time.Duration{100 * 24 * time.Hour, 40 * 24 * time.Hour, time.Hour} {
		c := &Conversion{
			RequestID:    fmt.Sprintf("r%d", i),
			SourceName:   "a.wav",
			TargetFormat: "mp3",
			Status:       StatusSuccess,
			CreatedAt:    now.Add(-age),
		}
		if err := db.RecordConversion(ctx, c); err != nil {
			t.Fatalf("RecordConversion: %v", err)
		}
	}

	n, err := db.PruneOlderThan(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}

	left, _ := db.RecentConversions(ctx, 10)
	if len(left) != 1 || left[0].RequestID != "r2" {
		t.Errorf("unexpected records after prune: %+v", left)
	}
}

func TestConcurrentRecordConversion(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- db.RecordConversion(ctx, &Conversion{
				RequestID:    fmt.Sprintf("r%d", i),
				SourceName:   "clip.mov",
				TargetFormat: "mp4",
				Status:       StatusSuccess,
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent RecordConversion: %v", err)
		}
	}

	s, _ := db.Stats(ctx)
	if s.Total != 20 {
		t.Errorf("Total = %d, want 20", s.Total)
	}
}

func TestDiagnoseDatabasePermissions(t *testing.T) {
	dir := t.TempDir()

	if err := diagnoseDatabasePermissions(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("expected writable directory to pass: %v", err)
	}

	if err := diagnoseDatabasePermissions(filepath.Join(dir, "missing", FileName)); err == nil {
		t.Error("expected error for missing directory")
	}
}
