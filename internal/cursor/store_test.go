package cursor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "cursor.json"))
}

func TestLoadMissingFile(t *testing.T) {
	store := newStore(t)
	cur, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("expected no cursor on first run")
	}
	if !cur.IsZero() {
		t.Fatalf("expected zero cursor, got %+v", cur)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	store := newStore(t)
	want := Cursor{
		ContinuationToken: "token-42",
		Watermark:         time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected cursor to exist")
	}
	if got.ContinuationToken != want.ContinuationToken || !got.Watermark.Equal(want.Watermark) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSaveNeverMovesWatermarkBackward(t *testing.T) {
	store := newStore(t)
	newer := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	if err := store.Save(Cursor{Watermark: newer}); err != nil {
		t.Fatalf("Save newer: %v", err)
	}
	if err := store.Save(Cursor{ContinuationToken: "t2", Watermark: older}); err != nil {
		t.Fatalf("Save older: %v", err)
	}

	got, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Watermark.Equal(newer) {
		t.Fatalf("watermark regressed to %v, want %v", got.Watermark, newer)
	}
	if got.ContinuationToken != "t2" {
		t.Fatalf("token not updated: %q", got.ContinuationToken)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	store := newStore(t)
	if err := store.Save(Cursor{Watermark: time.Now().UTC()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	store := newStore(t)
	if err := store.Save(Cursor{Watermark: time.Now().UTC()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	_, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load after invalidate: %v", err)
	}
	if found {
		t.Fatal("expected cursor to be gone after invalidation")
	}
	// Invalidating a missing cursor is not an error.
	if err := store.Invalidate(); err != nil {
		t.Fatalf("Invalidate twice: %v", err)
	}
}
