package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestItemDirCreateAndRemove(t *testing.T) {
	m := NewManager(t.TempDir(), nil)

	dir, err := m.ItemDir("file/../weird id")
	if err != nil {
		t.Fatalf("ItemDir: %v", err)
	}
	if filepath.Base(dir) != "item-file____weird_id" {
		t.Errorf("dir = %q", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir missing: %v", err)
	}

	// Creating again is fine.
	if _, err := m.ItemDir("file/../weird id"); err != nil {
		t.Fatalf("ItemDir again: %v", err)
	}

	m.Remove(dir)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dir should be gone, stat err = %v", err)
	}
}

func TestRemoveRefusesForeignDirs(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, nil)

	foreign := filepath.Join(root, "keep-me")
	if err := os.MkdirAll(foreign, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	m.Remove(foreign)
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("foreign dir removed: %v", err)
	}
}

func TestCleanStale(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, nil)

	stale, err := m.ItemDir("stale")
	if err != nil {
		t.Fatalf("ItemDir: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	fresh, err := m.ItemDir("fresh")
	if err != nil {
		t.Fatalf("ItemDir: %v", err)
	}
	foreign := filepath.Join(root, "unrelated")
	if err := os.MkdirAll(foreign, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Chtimes(foreign, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	m.CleanStale(24 * time.Hour)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale dir should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh dir should survive")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign dir should survive")
	}
}
