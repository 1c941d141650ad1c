// Package ledger records pass and item outcomes in SQLite for the status
// and history surfaces. The ledger is observability only: cursor
// advancement never depends on it, and recording failures are logged, not
// fatal.
package ledger
