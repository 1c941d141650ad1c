// Package pipeline runs scan passes: detect new recordings, then walk each
// one through fetch, transcribe, summarize, and publish.
//
// A pass is the unit of progress. Item failures are isolated, so one bad
// recording never stops the rest of the batch, while credential, scan, and
// persistence failures abort the pass with the cursor untouched so the same
// work is retried next time. Only one pass runs at a time; concurrent
// triggers are rejected with ErrPassActive.
package pipeline
