// Package services holds the shared error taxonomy and context plumbing used
// by the external service adapters and the ingestion pipeline.
package services
