package services

import (
	"errors"
	"fmt"
	"strings"
)

// Pass-fatal markers. An error tagged with one of these aborts the scan pass:
// the cursor is left untouched (scan), the token file has already been removed
// (credential), or state on disk can no longer be trusted (persistence).
var (
	ErrCredential  = errors.New("credential invalid")
	ErrScan        = errors.New("scan failure")
	ErrPersistence = errors.New("persistence failure")
)

// Item-scoped markers. An error tagged with one of these fails a single
// candidate item; the pipeline cleans up and continues with the next one.
var (
	ErrDownload      = errors.New("download failure")
	ErrTranscription = errors.New("transcription failure")
	ErrUnparsable    = errors.New("unparsable response")
	ErrPublish       = errors.New("publish failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrScan
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// PassFatal reports whether the error must abort the whole scan pass rather
// than just the current item.
func PassFatal(err error) bool {
	return errors.Is(err, ErrCredential) ||
		errors.Is(err, ErrScan) ||
		errors.Is(err, ErrPersistence)
}

// FailureKind maps an error to the outcome label recorded in the ledger.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredential):
		return "credential"
	case errors.Is(err, ErrScan):
		return "scan"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrDownload):
		return "download"
	case errors.Is(err, ErrTranscription):
		return "transcription"
	case errors.Is(err, ErrUnparsable):
		return "unparsable"
	case errors.Is(err, ErrPublish):
		return "publish"
	default:
		return "error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
