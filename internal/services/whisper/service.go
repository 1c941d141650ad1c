package whisper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Service provides whisper.cpp transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model path for logging.
func (s *Service) Model() string {
	return s.cfg.ModelPath
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ConvertAudio transcodes a staged recording into the mono 16kHz WAV file the
// engine expects.
func (s *Service) ConvertAudio(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("convert audio: source and dest required")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", sampleRate,
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg convert: %w", err)
	}
	return nil
}

// TranscribeResult contains the result of a transcription.
type TranscribeResult struct {
	// Text is the raw transcript text.
	Text string
	// TextPath is the sidecar transcript file the engine wrote.
	TextPath string
}

// TranscribeFile transcribes a converted WAV file and returns the raw text.
// The engine writes its sidecar transcript next to the source, named after
// the source's stem.
func (s *Service) TranscribeFile(ctx context.Context, source string) (TranscribeResult, error) {
	var result TranscribeResult

	if source == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}
	if strings.TrimSpace(s.cfg.ModelPath) == "" {
		return result, fmt.Errorf("transcribe: model path required")
	}

	stem := strings.TrimSuffix(source, filepath.Ext(source))
	if err := s.run(ctx, s.cfg.Binary, s.buildArgs(source, stem)...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	result.TextPath = stem + ".txt"
	data, err := os.ReadFile(result.TextPath)
	if err != nil {
		return result, fmt.Errorf("whisper: read transcript: %w", err)
	}
	result.Text = string(data)
	return result, nil
}

// buildArgs constructs the whisper.cpp command arguments.
func (s *Service) buildArgs(source, outputStem string) []string {
	args := []string{
		"-m", s.cfg.ModelPath,
		"-f", source,
		"--output-txt",
		"--output-file", outputStem,
		"--no-prints",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "-l", lang)
	}
	if s.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(s.cfg.Threads))
	}
	if !s.cfg.GPUEnabled {
		args = append(args, "--no-gpu")
	}
	return args
}
