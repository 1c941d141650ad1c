// Package logging builds slog loggers with scribe's output conventions and
// provides the shared attribute helpers used across the daemon and pipeline.
package logging
