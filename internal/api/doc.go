// Package api defines the JSON payloads shared between the daemon's HTTP
// surface and the CLI, plus the read-side services that build them.
package api
