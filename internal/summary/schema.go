package summary

import "encoding/json"

// schemaJSON constrains grammar-capable endpoints to the summary shape. List
// fields are flat string arrays; Repair still tolerates endpoints that
// render them as item_N objects instead.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "summary": {"type": "string"},
    "main_points": {"type": "array", "items": {"type": "string"}},
    "action_items": {"type": "array", "items": {"type": "string"}},
    "follow_up": {"type": "array", "items": {"type": "string"}},
    "stories": {"type": "array", "items": {"type": "string"}},
    "references": {"type": "array", "items": {"type": "string"}},
    "arguments": {"type": "array", "items": {"type": "string"}},
    "related_topics": {"type": "array", "items": {"type": "string"}},
    "sentiment": {"type": "string"}
  },
  "required": [
    "title",
    "summary",
    "main_points",
    "action_items",
    "follow_up",
    "stories",
    "references",
    "arguments",
    "related_topics",
    "sentiment"
  ],
  "additionalProperties": false
}`

// Schema returns the JSON schema for the summary response format.
func Schema() json.RawMessage {
	return json.RawMessage(schemaJSON)
}
