package summary

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"scribe/internal/services"
)

// rawRecord defers list decoding so damaged shapes can still be coerced.
type rawRecord struct {
	Title         json.RawMessage `json:"title"`
	Summary       json.RawMessage `json:"summary"`
	MainPoints    json.RawMessage `json:"main_points"`
	ActionItems   json.RawMessage `json:"action_items"`
	FollowUp      json.RawMessage `json:"follow_up"`
	Stories       json.RawMessage `json:"stories"`
	References    json.RawMessage `json:"references"`
	Arguments     json.RawMessage `json:"arguments"`
	RelatedTopics json.RawMessage `json:"related_topics"`
	Sentiment     json.RawMessage `json:"sentiment"`

	SourceURL       string `json:"source_url"`
	DurationSeconds int64  `json:"duration_seconds"`
	SizeLabel       string `json:"size_label"`
	Tag             string `json:"tag"`
}

// Repair parses model output into a Record, escalating through three
// attempts before giving up:
//
//  1. strict parse of the payload as-is
//  2. structural repair of the whole payload, then strict parse
//  3. slice from the first '{' or '[' to the last '}' or ']' to shed
//     surrounding prose, repair the slice, then strict parse
//
// On success every list field is flattened to []string and absent or empty
// lists are filled with Placeholder, so Repair is total over its own output.
func Repair(raw string) (*Record, error) {
	record, err := decodeRecord(raw)
	if err == nil {
		return record, nil
	}

	if repaired, repairErr := jsonrepair.JSONRepair(raw); repairErr == nil {
		if record, err = decodeRecord(repaired); err == nil {
			return record, nil
		}
	}

	start := strings.IndexAny(raw, "{[")
	end := strings.LastIndexAny(raw, "}]")
	if start >= 0 && end > start {
		if repaired, repairErr := jsonrepair.JSONRepair(raw[start : end+1]); repairErr == nil {
			if record, err = decodeRecord(repaired); err == nil {
				return record, nil
			}
		}
	}

	return nil, services.Wrap(services.ErrUnparsable, "summary", "repair",
		"model returned unrecoverable json", err)
}

func decodeRecord(text string) (*Record, error) {
	payload := []byte(strings.TrimSpace(text))

	// A top-level array is tolerated by taking its first object element.
	if bytes.HasPrefix(payload, []byte("[")) {
		var elements []json.RawMessage
		if err := json.Unmarshal(payload, &elements); err != nil {
			return nil, err
		}
		payload = nil
		for _, element := range elements {
			if bytes.HasPrefix(bytes.TrimSpace(element), []byte("{")) {
				payload = element
				break
			}
		}
	}

	var rec rawRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}

	record := &Record{
		Title:           coerceString(rec.Title),
		Summary:         coerceString(rec.Summary),
		MainPoints:      coerceList(rec.MainPoints),
		ActionItems:     coerceList(rec.ActionItems),
		FollowUp:        coerceList(rec.FollowUp),
		Stories:         coerceList(rec.Stories),
		References:      coerceList(rec.References),
		Arguments:       coerceList(rec.Arguments),
		RelatedTopics:   coerceList(rec.RelatedTopics),
		Sentiment:       coerceString(rec.Sentiment),
		SourceURL:       rec.SourceURL,
		DurationSeconds: rec.DurationSeconds,
		SizeLabel:       rec.SizeLabel,
		Tag:             rec.Tag,
	}
	for _, list := range record.listFields() {
		if len(*list) == 0 {
			*list = []string{Placeholder}
		}
	}
	return record, nil
}

// coerceString extracts a scalar field, flattening composite values that
// some models emit in place of a plain string.
func coerceString(raw json.RawMessage) string {
	value, err := decodeValue(raw)
	if err != nil || value == nil {
		return ""
	}
	return strings.Join(flattenValue(value), " ")
}

// coerceList flattens a field to []string. It accepts flat arrays, nested
// arrays, a bare string, and the item_N object shape produced by
// grammar-constrained endpoints.
func coerceList(raw json.RawMessage) []string {
	value, err := decodeValue(raw)
	if err != nil || value == nil {
		return nil
	}
	return flattenValue(value)
}

func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func flattenValue(value any) []string {
	var out []string
	switch v := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	case json.Number:
		out = append(out, v.String())
	case bool:
		out = append(out, strconv.FormatBool(v))
	case []any:
		for _, element := range v {
			out = append(out, flattenValue(element)...)
		}
	case map[string]any:
		for _, key := range itemOrderedKeys(v) {
			out = append(out, flattenValue(v[key])...)
		}
	}
	return out
}

// itemOrderedKeys sorts object keys so item_1..item_10 come out in numeric
// order rather than lexical.
func itemOrderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := trailingNumber(keys[i])
		nj, jok := trailingNumber(keys[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func trailingNumber(key string) (int, bool) {
	idx := strings.LastIndexByte(key, '_')
	if idx < 0 || idx == len(key)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
