package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublished(context.Background(), "Example", "page-1"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Published = true
	cfg.Notifications.Failures = true
	cfg.Notifications.Passes = true
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyPublished(context.Background(), "Planning memo", "page-1"); err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	if captured.title != "Scribe - Published" {
		t.Errorf("title = %q", captured.title)
	}
	if captured.body != "Summary published: Planning memo" {
		t.Errorf("body = %q", captured.body)
	}
	if captured.tags != "scribe,publish,completed" {
		t.Errorf("tags = %q", captured.tags)
	}

	if err := svc.NotifyItemFailed(context.Background(), "memo.mp3", "download", errors.New("http 500")); err != nil {
		t.Fatalf("NotifyItemFailed: %v", err)
	}
	if captured.body != "Failed to process memo.mp3 (download): http 500" {
		t.Errorf("body = %q", captured.body)
	}
	if captured.priority != "high" {
		t.Errorf("priority = %q", captured.priority)
	}

	if err := svc.NotifyPassCompleted(context.Background(), 2, 1, 90*time.Second); err != nil {
		t.Fatalf("NotifyPassCompleted: %v", err)
	}
	if captured.title != "Scribe - Pass Complete (with errors)" {
		t.Errorf("title = %q", captured.title)
	}
	if captured.body != "Pass complete: 2 published, 1 failed in 1m30s" {
		t.Errorf("body = %q", captured.body)
	}
}

func TestNtfyServiceHonorsGates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for gated event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Published = false
	cfg.Notifications.Failures = false
	cfg.Notifications.Passes = false
	svc := notifications.NewService(&cfg)

	ctx := context.Background()
	if err := svc.NotifyPublished(ctx, "x", "page"); err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	if err := svc.NotifyItemFailed(ctx, "x", "download", errors.New("boom")); err != nil {
		t.Fatalf("NotifyItemFailed: %v", err)
	}
	if err := svc.NotifyPassStarted(ctx, 3); err != nil {
		t.Fatalf("NotifyPassStarted: %v", err)
	}
	if err := svc.NotifyPassFailed(ctx, errors.New("boom")); err != nil {
		t.Fatalf("NotifyPassFailed: %v", err)
	}
}
