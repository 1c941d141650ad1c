// Package scanner detects newly uploaded recordings in the watched Drive
// folder and computes the cursor the next pass resumes from.
package scanner
