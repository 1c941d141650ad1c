package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndReadPasses(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i, outcome := range []string{PassEmpty, PassCompleted} {
		err := l.RecordPass(ctx, PassRecord{
			PassID:     []string{"pass-1", "pass-2"}[i],
			Origin:     "poll",
			StartedAt:  started.Add(time.Duration(i) * time.Hour),
			FinishedAt: started.Add(time.Duration(i)*time.Hour + time.Minute),
			Scanned:    i * 3,
			Published:  i * 2,
			Failed:     i,
			Outcome:    outcome,
		})
		if err != nil {
			t.Fatalf("RecordPass: %v", err)
		}
	}

	passes, err := l.RecentPasses(ctx, 10)
	if err != nil {
		t.Fatalf("RecentPasses: %v", err)
	}
	if len(passes) != 2 {
		t.Fatalf("passes = %d", len(passes))
	}
	if passes[0].PassID != "pass-2" {
		t.Errorf("not newest first: %v", passes[0].PassID)
	}
	if passes[0].Scanned != 3 || passes[0].Published != 2 || passes[0].Failed != 1 {
		t.Errorf("counts = %+v", passes[0])
	}
	if !passes[1].StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v", passes[1].StartedAt)
	}
}

func TestRecordAndReadItems(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	records := []ItemRecord{
		{PassID: "pass-1", FileID: "f1", Name: "a.mp3", Outcome: ItemPublished, PageID: "page-1", DurationSeconds: 90},
		{PassID: "pass-1", FileID: "f2", Name: "b.mp3", Outcome: ItemFailed, FailureKind: "download", Detail: "http 500"},
		{PassID: "pass-2", FileID: "f3", Name: "c.mp3", Outcome: ItemPublished, PageID: "page-2"},
	}
	for _, rec := range records {
		if err := l.RecordItem(ctx, rec); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}

	items, err := l.RecentItems(ctx, 2)
	if err != nil {
		t.Fatalf("RecentItems: %v", err)
	}
	if len(items) != 2 || items[0].FileID != "f3" {
		t.Fatalf("items = %+v", items)
	}

	passItems, err := l.PassItems(ctx, "pass-1")
	if err != nil {
		t.Fatalf("PassItems: %v", err)
	}
	if len(passItems) != 2 {
		t.Fatalf("pass items = %d", len(passItems))
	}
	if passItems[0].FileID != "f1" || passItems[1].FailureKind != "download" {
		t.Errorf("pass items = %+v", passItems)
	}
	if passItems[0].RecordedAt.IsZero() {
		t.Error("RecordedAt not defaulted")
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.RecordPass(context.Background(), PassRecord{
		PassID: "pass-1", Origin: "manual", Outcome: PassCompleted,
		StartedAt: time.Now(), FinishedAt: time.Now(),
	}); err != nil {
		t.Fatalf("RecordPass: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	passes, err := reopened.RecentPasses(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentPasses: %v", err)
	}
	if len(passes) != 1 || passes[0].PassID != "pass-1" {
		t.Fatalf("passes = %+v", passes)
	}
}
