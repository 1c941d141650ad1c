package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// placeholderPattern matches whisper's non-speech markers, e.g. [BLANK_AUDIO],
// [inaudible], (inaudible), [MUSIC PLAYING], [_BEG_].
var placeholderPattern = regexp.MustCompile(`(?i)[\[(][ _]*(?:blank[ _]?audio|inaudible|music(?:[ _]playing)?|silence|_?beg_?|no[ _]?speech)[ _]*[\])]`)

// CleanTranscript normalizes raw transcription output into a single line of
// plain text: placeholder markers and control characters are stripped,
// newlines collapse to spaces, and runs of whitespace shrink to one space.
func CleanTranscript(raw string) string {
	cleaned := placeholderPattern.ReplaceAllString(raw, " ")
	var sb strings.Builder
	sb.Grow(len(cleaned))
	for _, r := range cleaned {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteByte(' ')
		case unicode.IsControl(r):
			// drop
		default:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// sentenceEnd matches a sentence terminator followed by whitespace.
var sentenceEnd = regexp.MustCompile(`([.!?]["')\]]?)\s+`)

// SplitSentences resegments a cleaned transcript into sentences for display.
// The terminator stays attached to its sentence. Text without terminators
// comes back as a single segment.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	marked := sentenceEnd.ReplaceAllString(text, "$1\x1f")
	parts := strings.Split(marked, "\x1f")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// SizeLabel formats a byte count the way the summary page reports it.
func SizeLabel(bytes int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
		gib = 1024 * mib
	)
	switch {
	case bytes >= gib:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gib))
	case bytes >= mib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mib))
	case bytes >= kib:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(kib))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
