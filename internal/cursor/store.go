package cursor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cursor marks the resumption point for the next scan pass.
type Cursor struct {
	// ContinuationToken is the provider's start-page token. It is carried
	// opaquely and never interpreted; the watermark is the authoritative
	// resumption key.
	ContinuationToken string `json:"continuation_token,omitempty"`
	// Watermark is the boundary below which all items are considered
	// already processed.
	Watermark time.Time `json:"watermark_time"`
}

// IsZero reports whether the cursor carries no resumption state.
func (c Cursor) IsZero() bool {
	return c.ContinuationToken == "" && c.Watermark.IsZero()
}

// Store reads and writes the persisted cursor file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a cursor store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted cursor. The boolean is false on first run or
// after invalidation, when no cursor file exists yet.
func (s *Store) Load() (Cursor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Cursor{}, false, nil
		}
		return Cursor{}, false, fmt.Errorf("read cursor: %w", err)
	}
	var cur Cursor
	if err := json.Unmarshal(data, &cur); err != nil {
		return Cursor{}, false, fmt.Errorf("parse cursor: %w", err)
	}
	return cur, true, nil
}

// Save persists the cursor wholesale. The watermark never moves backward: if
// the incoming value precedes the stored one, the stored watermark is kept so
// recovery re-scans an overlapping window instead of skipping items. The
// write goes through a temp file and rename so a crash mid-save leaves the
// previous cursor intact.
func (s *Store) Save(cur Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.readLocked(); err == nil && existing.Watermark.After(cur.Watermark) {
		cur.Watermark = existing.Watermark
	}

	data, err := json.MarshalIndent(cur, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cursor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure cursor directory: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp cursor: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename cursor file: %w", err)
	}
	return nil
}

// Invalidate removes the cursor file, forcing re-derivation on the next pass.
// Used when credentials are revoked and the scan boundary can no longer be
// trusted.
func (s *Store) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cursor: %w", err)
	}
	return nil
}

func (s *Store) readLocked() (Cursor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Cursor{}, err
	}
	var cur Cursor
	if err := json.Unmarshal(data, &cur); err != nil {
		return Cursor{}, err
	}
	return cur, nil
}
