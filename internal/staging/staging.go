// Package staging manages per-item work directories under the configured
// staging root. Every item gets its own directory so a crashed or parallel
// run can never trample another item's files.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/logging"
)

const itemDirPrefix = "item-"

// Manager creates and removes item work directories.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager rooted at the staging directory.
func NewManager(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		root:   root,
		logger: logging.NewComponentLogger(logger, "staging"),
	}
}

// ItemDir creates and returns the work directory for one item.
func (m *Manager) ItemDir(itemID string) (string, error) {
	dir := filepath.Join(m.root, itemDirPrefix+sanitize(itemID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("staging: create item dir: %w", err)
	}
	return dir, nil
}

// Remove deletes an item work directory and everything in it.
func (m *Manager) Remove(dir string) {
	if dir == "" || !strings.HasPrefix(filepath.Base(dir), itemDirPrefix) {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Warn("failed to remove item dir",
			logging.String("dir", dir),
			logging.Error(err))
	}
}

// CleanStale removes leftover item directories older than maxAge, covering
// dirs orphaned by a crash mid-pass.
func (m *Manager) CleanStale(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to read staging root", logging.Error(err))
		}
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), itemDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.root, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("failed to remove stale item dir",
				logging.String("dir", dir),
				logging.Error(err))
			continue
		}
		m.logger.Info("removed stale item dir", logging.String("dir", dir))
	}
}

// sanitize keeps item IDs filesystem-safe.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
