// Package main hosts the scribe CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the scribed daemon API: triggering scan passes, checking
// authorization and daemon status, browsing pass history, and configuration
// scaffolding. It centralizes configuration resolution and daemon endpoint
// discovery so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
