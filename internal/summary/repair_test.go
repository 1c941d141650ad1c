package summary

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"scribe/internal/services"
)

func TestRepairValidPayload(t *testing.T) {
	raw := `{
		"title": "Weekly planning",
		"summary": "A short recap.",
		"main_points": ["point one", "point two"],
		"action_items": ["call Sam (2026-08-31)"],
		"follow_up": ["what about budget?"],
		"stories": ["Nothing found for this list."],
		"references": ["Nothing found for this list."],
		"arguments": ["the plan ignores costs"],
		"related_topics": ["planning"],
		"sentiment": "Positive and focused."
	}`
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if record.Title != "Weekly planning" {
		t.Errorf("Title = %q", record.Title)
	}
	if !reflect.DeepEqual(record.MainPoints, []string{"point one", "point two"}) {
		t.Errorf("MainPoints = %v", record.MainPoints)
	}
	if !reflect.DeepEqual(record.Stories, []string{Placeholder}) {
		t.Errorf("Stories = %v", record.Stories)
	}
}

func TestRepairTrailingCommasAndUnquotedKeys(t *testing.T) {
	raw := `{
		title: "Damaged",
		"summary": "Still recoverable.",
		"main_points": ["one", "two",],
		"action_items": [],
		"follow_up": ["ask again",],
		"stories": [],
		"references": [],
		"arguments": [],
		"related_topics": ["repair"],
		"sentiment": "Neutral",
	}`
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if record.Title != "Damaged" {
		t.Errorf("Title = %q", record.Title)
	}
	if !reflect.DeepEqual(record.MainPoints, []string{"one", "two"}) {
		t.Errorf("MainPoints = %v", record.MainPoints)
	}
	if !reflect.DeepEqual(record.ActionItems, []string{Placeholder}) {
		t.Errorf("ActionItems = %v", record.ActionItems)
	}
}

func TestRepairStripsSurroundingProse(t *testing.T) {
	raw := "Sure! Here is the summary you asked for:\n\n" +
		`{"title": "Wrapped", "summary": "s", "sentiment": "fine"}` +
		"\n\nLet me know if you need anything else."
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if record.Title != "Wrapped" {
		t.Errorf("Title = %q", record.Title)
	}
	if !reflect.DeepEqual(record.FollowUp, []string{Placeholder}) {
		t.Errorf("FollowUp = %v", record.FollowUp)
	}
}

func TestRepairFlattensItemObjects(t *testing.T) {
	raw := `{
		"title": "Grammar shape",
		"summary": "s",
		"main_points": {"item_2": "second", "item_1": "first", "item_10": "tenth"},
		"action_items": [["nested", "list"], "flat"],
		"sentiment": "ok"
	}`
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !reflect.DeepEqual(record.MainPoints, []string{"first", "second", "tenth"}) {
		t.Errorf("MainPoints = %v", record.MainPoints)
	}
	if !reflect.DeepEqual(record.ActionItems, []string{"nested", "list", "flat"}) {
		t.Errorf("ActionItems = %v", record.ActionItems)
	}
}

func TestRepairBareStringList(t *testing.T) {
	raw := `{"title": "t", "summary": "s", "references": "just one reference", "sentiment": "ok"}`
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !reflect.DeepEqual(record.References, []string{"just one reference"}) {
		t.Errorf("References = %v", record.References)
	}
}

func TestRepairTopLevelArray(t *testing.T) {
	raw := `[{"title": "From array", "summary": "s", "sentiment": "ok"}]`
	record, err := Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if record.Title != "From array" {
		t.Errorf("Title = %q", record.Title)
	}
}

func TestRepairIdempotent(t *testing.T) {
	original := &Record{
		Title:           "Round trip",
		Summary:         "Stable under re-repair.",
		MainPoints:      []string{"a", "b"},
		ActionItems:     []string{Placeholder},
		FollowUp:        []string{"q1"},
		Stories:         []string{Placeholder},
		References:      []string{Placeholder},
		Arguments:       []string{"counterpoint"},
		RelatedTopics:   []string{"topics"},
		Sentiment:       "calm",
		SourceURL:       "https://drive.google.com/file/d/abc/view",
		DurationSeconds: 93,
		SizeLabel:       "1.4 MB",
		Tag:             "voice-note",
	}
	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	repaired, err := Repair(string(encoded))
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !reflect.DeepEqual(repaired, original) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", repaired, original)
	}
}

func TestRepairUnrecoverableInput(t *testing.T) {
	for _, raw := range []string{"", "no json here at all", "]["} {
		_, err := Repair(raw)
		if err == nil {
			t.Fatalf("Repair(%q): expected error", raw)
		}
		if !errors.Is(err, services.ErrUnparsable) {
			t.Errorf("Repair(%q): error %v is not ErrUnparsable", raw, err)
		}
	}
}

func TestSchemaIsValidJSON(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal(Schema(), &decoded); err != nil {
		t.Fatalf("schema does not parse: %v", err)
	}
	if decoded["type"] != "object" {
		t.Errorf("schema type = %v", decoded["type"])
	}
}

func TestPromptsMentionEveryKey(t *testing.T) {
	system := SystemPrompt()
	for _, key := range []string{
		"title", "summary", "main_points", "action_items", "follow_up",
		"stories", "references", "arguments", "related_topics", "sentiment",
	} {
		if !strings.Contains(system, `"`+key+`"`) {
			t.Errorf("system prompt missing key %q", key)
		}
	}
	if !strings.Contains(system, Placeholder) {
		t.Error("system prompt missing placeholder instruction")
	}

	user := UserPrompt("  hello world  ", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if !strings.Contains(user, "Today is 2026-08-30.") {
		t.Errorf("user prompt missing date: %q", user)
	}
	if !strings.HasSuffix(user, "Transcript: hello world") {
		t.Errorf("user prompt = %q", user)
	}
}
