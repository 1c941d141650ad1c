// Package ffprobe shells out to ffprobe to read container metadata from
// staged audio files, primarily the source recording's duration.
package ffprobe
