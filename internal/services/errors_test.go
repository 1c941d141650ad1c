package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("socket closed")
	err := Wrap(ErrDownload, "drive", "download", "voice-note.m4a", base)
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected wrapped error to carry ErrDownload, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to carry the cause, got %v", err)
	}
}

func TestPassFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{Wrap(ErrCredential, "drive", "token", "", nil), true},
		{Wrap(ErrScan, "scanner", "list", "", nil), true},
		{Wrap(ErrPersistence, "cursor", "save", "", nil), true},
		{Wrap(ErrDownload, "drive", "download", "", nil), false},
		{Wrap(ErrTranscription, "whisper", "run", "", nil), false},
		{Wrap(ErrUnparsable, "summary", "repair", "", nil), false},
		{Wrap(ErrPublish, "notion", "create", "", nil), false},
		{errors.New("unclassified"), false},
	}
	for _, tc := range cases {
		if got := PassFatal(tc.err); got != tc.fatal {
			t.Errorf("PassFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestFailureKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("outer: %w", ErrDownload), "download"},
		{Wrap(ErrTranscription, "whisper", "run", "exit 1", nil), "transcription"},
		{Wrap(ErrUnparsable, "summary", "repair", "", nil), "unparsable"},
		{Wrap(ErrPublish, "notion", "append", "", nil), "publish"},
		{Wrap(ErrCredential, "drive", "refresh", "", nil), "credential"},
		{errors.New("mystery"), "error"},
	}
	for _, tc := range cases {
		if got := FailureKind(tc.err); got != tc.want {
			t.Errorf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
