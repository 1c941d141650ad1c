package ffprobe

import (
	"context"
	"errors"
	"testing"
)

func TestDurationSeconds(t *testing.T) {
	prober := NewProber("")
	prober.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"format":{"filename":"audio.m4a","duration":"94.51","format_name":"mov,mp4"}}`), nil
	})

	seconds, err := prober.DurationSeconds(context.Background(), "audio.m4a")
	if err != nil {
		t.Fatalf("DurationSeconds: %v", err)
	}
	if seconds != 95 {
		t.Fatalf("seconds = %d, want 95", seconds)
	}
}

func TestDurationSecondsMissingField(t *testing.T) {
	prober := NewProber("ffprobe")
	prober.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"format":{"filename":"audio.wav"}}`), nil
	})

	seconds, err := prober.DurationSeconds(context.Background(), "audio.wav")
	if err != nil {
		t.Fatalf("DurationSeconds: %v", err)
	}
	if seconds != 0 {
		t.Fatalf("seconds = %d, want 0", seconds)
	}
}

func TestInspectCommandFailure(t *testing.T) {
	prober := NewProber("ffprobe")
	prober.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})

	if _, err := prober.Inspect(context.Background(), "missing.mp3"); err == nil {
		t.Fatal("expected error from failing probe")
	}
}

func TestInspectEmptyPath(t *testing.T) {
	prober := NewProber("ffprobe")
	if _, err := prober.Inspect(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
