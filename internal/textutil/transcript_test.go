package textutil

import (
	"strings"
	"testing"
)

func TestCleanTranscriptStripsPlaceholders(t *testing.T) {
	raw := "Hello there.\n[BLANK_AUDIO]\nThis is a test. [inaudible] Done.\n"
	got := CleanTranscript(raw)
	if strings.Contains(got, "BLANK_AUDIO") || strings.Contains(got, "inaudible") {
		t.Fatalf("placeholders not stripped: %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Fatalf("newlines not stripped: %q", got)
	}
	want := "Hello there. This is a test. Done."
	if got != want {
		t.Fatalf("CleanTranscript = %q, want %q", got, want)
	}
}

func TestCleanTranscriptDropsControlCharacters(t *testing.T) {
	got := CleanTranscript("a\x00b\x07c")
	if got != "abc" {
		t.Fatalf("CleanTranscript = %q, want %q", got, "abc")
	}
}

func TestCleanTranscriptCollapsesWhitespace(t *testing.T) {
	got := CleanTranscript("  a   b\t\tc  ")
	if got != "a b c" {
		t.Fatalf("CleanTranscript = %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second one! Third one? Fourth")
	want := []string{"First one.", "Second one!", "Third one?", "Fourth"}
	if len(got) != len(want) {
		t.Fatalf("SplitSentences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences("   "); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSizeLabel(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tc := range cases {
		if got := SizeLabel(tc.bytes); got != tc.want {
			t.Errorf("SizeLabel(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
