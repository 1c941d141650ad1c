// Package textutil provides transcript text processing utilities.
//
// The primary use cases are:
//   - Normalizing raw whisper output (placeholder markers, control characters)
//   - Resegmenting a transcript into sentences for long-form page rendering
//   - Formatting byte counts as human-readable size labels
package textutil
