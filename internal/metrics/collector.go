package metrics

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"media-converter/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current conversion history statistics
type Stats struct {
	TotalConversions int
	Succeeded        int
	Failed           int
	Fallbacks        int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once

	mu      sync.RWMutex
	workDir string
}

// NewCollector creates a new metrics collector. provider and dbPath may be
// empty when conversion history is disabled.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// SetWorkDir sets the temporary working directory whose size is reported.
func (c *Collector) SetWorkDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workDir = dir
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.collectHistoryStats()
	c.collectDBSize()
	c.collectWorkspaceSize()
	c.collectRuntime()
}

func (c *Collector) collectHistoryStats() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	HistoryConversions.WithLabelValues(StatusSuccess).Set(float64(stats.Succeeded))
	HistoryConversions.WithLabelValues(StatusFailed).Set(float64(stats.Failed))

	logging.Debug("Metrics collected: conversions=%d, succeeded=%d, failed=%d, fallbacks=%d",
		stats.TotalConversions, stats.Succeeded, stats.Failed, stats.Fallbacks)
}

func (c *Collector) collectDBSize() {
	if c.dbPath == "" {
		return
	}

	for label, suffix := range map[string]string{"main": "", "wal": "-wal", "shm": "-shm"} {
		if info, err := os.Stat(c.dbPath + suffix); err == nil {
			DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
		} else {
			DBSizeBytes.WithLabelValues(label).Set(0)
		}
	}
}

func (c *Collector) collectWorkspaceSize() {
	c.mu.RLock()
	dir := c.workDir
	c.mu.RUnlock()

	if dir == "" {
		return
	}

	size, count := workDirUsage(dir)
	WorkspaceSizeBytes.Set(float64(size))
	WorkspacesActive.Set(float64(count))
}

// workDirUsage returns the total size of all files under dir and the number
// of immediate subdirectories (one per in-flight request).
func workDirUsage(dir string) (size int64, workspaces int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("Failed to read work directory %s: %v", dir, err)
		}
		return 0, 0
	}

	for _, e := range entries {
		if e.IsDir() {
			workspaces++
		}
	}

	err = filepath.WalkDir(dir, func(_ string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Workspaces are removed concurrently; skip what disappeared.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		logging.Debug("Failed to walk work directory %s: %v", dir, err)
	}

	return size, workspaces
}

func (c *Collector) collectRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	GoMemAllocBytes.Set(float64(m.Alloc))
	GoGoroutines.Set(float64(runtime.NumGoroutine()))
}
