// Package daemon runs the background service: it enforces single-instance
// execution with a lock file, exposes the HTTP surface (OAuth flow, scan
// trigger, status, history), and drives scan passes on the poll interval.
package daemon
