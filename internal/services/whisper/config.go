package whisper

// Config captures runtime settings for whisper.cpp transcription.
type Config struct {
	// Binary is the whisper.cpp executable (e.g. "whisper-cli").
	Binary string
	// ModelPath points at the ggml model file.
	ModelPath string
	// Language is the ISO 639-1 source language hint; empty lets the
	// engine auto-detect.
	Language string
	// GPUEnabled keeps GPU offload on; when false the engine is forced
	// onto the CPU.
	GPUEnabled bool
	// Threads bounds CPU worker threads.
	Threads int
}

// Command names and conversion constants for external tools.
const (
	DefaultBinary = "whisper-cli"
	FFmpegCommand = "ffmpeg"

	// whisper.cpp expects mono 16kHz PCM input.
	sampleRate = "16000"
)
