// Package cursor persists the scan watermark between passes.
//
// The cursor is the only cross-pass mutable state: a provider continuation
// token (opaque) and the watermark timestamp below which every Drive item is
// considered already processed. It is read once at the start of a pass and
// written once at the end, wholesale, via temp-file-and-rename.
package cursor
