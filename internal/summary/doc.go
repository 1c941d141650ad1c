// Package summary turns raw LLM output into validated summary records.
//
// The model is asked for a fixed JSON shape but routinely returns damaged
// payloads: trailing commas, unquoted keys, prose wrapped around the object,
// or list fields rendered as item_N objects. Repair recovers a Record from
// all of those, and only gives up after three escalating attempts.
package summary
