// Package whisper wraps the local whisper.cpp CLI used to transcribe staged
// audio recordings. The engine writes a sidecar text transcript next to the
// converted audio; callers read the raw text back through TranscribeFile.
package whisper
