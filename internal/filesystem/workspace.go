package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-converter/internal/formats"
	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// ErrUploadTooLarge is returned by SaveUpload when the input exceeds the limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

// convertedDir holds the output when it would otherwise overwrite the input.
const convertedDir = "converted"

// fallbackName is used when a client sends a filename with no usable base.
const fallbackName = "upload"

// Manager creates and removes per-request workspaces under a root directory.
type Manager struct {
	root  string
	keep  bool
	retry RetryConfig
}

// NewManager returns a Manager rooted at root. When keep is true, Release
// leaves workspaces on disk for debugging.
func NewManager(root string, keep bool) *Manager {
	return &Manager{
		root:  root,
		keep:  keep,
		retry: DefaultRetryConfig(),
	}
}

// Root returns the directory workspaces are created in.
func (m *Manager) Root() string {
	return m.root
}

// EnsureRoot creates the root directory if it is missing.
func (m *Manager) EnsureRoot() error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("failed to create temp directory %s: %w", m.root, err)
	}
	return nil
}

// Workspace is a directory owned by exactly one request.
type Workspace struct {
	ID  string
	Dir string
}

// Create makes a new uniquely named workspace.
func (m *Manager) Create() (*Workspace, error) {
	if err := m.EnsureRoot(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	dir := filepath.Join(m.root, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return &Workspace{ID: id, Dir: dir}, nil
}

// Release removes ws and everything in it unless the manager keeps work files.
func (m *Manager) Release(ws *Workspace) {
	if ws == nil {
		return
	}
	if m.keep {
		logging.Debug("Keeping workspace %s", ws.Dir)
		return
	}
	if err := RemoveAllWithRetry(ws.Dir, m.retry); err != nil {
		metrics.WorkspaceCleanupErrors.Inc()
		logging.Warn("Failed to remove workspace %s: %v", ws.Dir, err)
	}
}

// PurgeStale removes workspaces last modified before olderThan ago and returns
// how many were removed and the bytes freed. Left-overs come from crashes or
// KEEP_WORK_FILES.
func (m *Manager) PurgeStale(olderThan time.Duration) (int, int64, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to read temp directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	var removed int
	var freed int64

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			// Not one of ours.
			continue
		}

		path := filepath.Join(m.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			logging.Warn("failed to get info for %s: %v", path, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		size, _ := dirSize(path)
		if err := RemoveAllWithRetry(path, m.retry); err != nil {
			logging.Warn("failed to remove stale workspace %s: %v", path, err)
			continue
		}
		removed++
		freed += size
	}

	if removed > 0 {
		logging.Info("Purged %d stale workspaces, freed %d bytes", removed, freed)
	}
	return removed, freed, nil
}

// SaveUpload writes r into the workspace under the base name of filename and
// returns the stored path and byte count. A limit of zero or less disables
// the size check.
func (ws *Workspace) SaveUpload(filename string, r io.Reader, limit int64) (string, int64, error) {
	path := filepath.Join(ws.Dir, SafeBaseName(filename))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create input file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	if copyErr != nil {
		return "", n, fmt.Errorf("failed to write input file: %w", copyErr)
	}
	if closeErr != nil {
		return "", n, fmt.Errorf("failed to close input file: %w", closeErr)
	}
	if limit > 0 && n > limit {
		return "", n, ErrUploadTooLarge
	}

	return path, n, nil
}

// OutputPath returns where the conversion of input to format is written: the
// input's name with its extension replaced, in the same directory. If that
// would be the input itself, the output goes under converted/.
func (ws *Workspace) OutputPath(input, format string) (string, error) {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, formats.Ext(base)) + "." + format
	out := filepath.Join(filepath.Dir(input), name)

	if out != input {
		return out, nil
	}

	dir := filepath.Join(ws.Dir, convertedDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// SafeBaseName strips any directory components a client put in filename.
func SafeBaseName(filename string) string {
	// Browsers on Windows may send backslash-separated paths.
	filename = strings.ReplaceAll(filename, `\`, "/")
	base := filepath.Base(filename)
	switch base {
	case "", ".", "..", "/":
		return fallbackName
	}
	return base
}

// dirSize calculates the total size of a directory
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
