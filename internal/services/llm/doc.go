// Package llm wraps an OpenAI-compatible chat completions endpoint used for
// transcript summarization. Requests are JSON-only; when the endpoint
// supports schema-constrained decoding the summary schema is attached as a
// json_schema response format, otherwise json_object is requested and the
// caller's repair layer deals with malformed output.
package llm
