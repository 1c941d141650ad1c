package whisper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscribeFileReadsSidecar(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(source, []byte("riff"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	svc := NewService(Config{ModelPath: "/models/ggml-base.bin", Language: "en", Threads: 2}, "")
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		// The engine writes the sidecar transcript next to the source.
		return os.WriteFile(filepath.Join(dir, "audio.txt"), []byte("hello world\n"), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if strings.TrimSpace(result.Text) != "hello world" {
		t.Fatalf("text = %q", result.Text)
	}
	if result.TextPath != filepath.Join(dir, "audio.txt") {
		t.Fatalf("text path = %q", result.TextPath)
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-m /models/ggml-base.bin") {
		t.Fatalf("model flag missing: %v", gotArgs)
	}
	if !strings.Contains(joined, "-l en") {
		t.Fatalf("language flag missing: %v", gotArgs)
	}
	if !strings.Contains(joined, "--no-gpu") {
		t.Fatalf("expected CPU fallback flag: %v", gotArgs)
	}
}

func TestTranscribeFileRequiresModel(t *testing.T) {
	svc := NewService(Config{}, "")
	if _, err := svc.TranscribeFile(context.Background(), "audio.wav"); err == nil {
		t.Fatal("expected error without model path")
	}
}

func TestConvertAudioArgs(t *testing.T) {
	svc := NewService(Config{ModelPath: "m.bin", GPUEnabled: true}, "ffmpeg")
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		return nil
	})

	if err := svc.ConvertAudio(context.Background(), "in.m4a", "out.wav"); err != nil {
		t.Fatalf("ConvertAudio: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.HasPrefix(joined, "ffmpeg ") {
		t.Fatalf("unexpected binary: %v", gotArgs)
	}
	for _, want := range []string{"-ac 1", "-ar 16000", "pcm_s16le", "out.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args: %v", want, gotArgs)
		}
	}
}
