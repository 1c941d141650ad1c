package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; the ledger is
// disposable history, so a mismatch just asks the operator to delete it.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// release.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Pass outcomes.
const (
	PassCompleted = "completed"
	PassFailed    = "failed"
	PassEmpty     = "empty"
)

// Item outcomes.
const (
	ItemPublished = "published"
	ItemFailed    = "failed"
)

// PassRecord is one finished scan pass.
type PassRecord struct {
	PassID     string
	Origin     string
	StartedAt  time.Time
	FinishedAt time.Time
	Scanned    int
	Published  int
	Failed     int
	Outcome    string
	Detail     string
}

// ItemRecord is the outcome of one item within a pass.
type ItemRecord struct {
	PassID          string
	FileID          string
	Name            string
	Outcome         string
	FailureKind     string
	Detail          string
	DurationSeconds int64
	PageID          string
	RecordedAt      time.Time
}

// Ledger persists outcome history in SQLite.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	l := &Ledger{db: db, path: path}
	if err := l.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) initSchema(ctx context.Context) error {
	var tableExists int
	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := l.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, l.path)
	}
	return nil
}

// RecordPass stores one finished pass.
func (l *Ledger) RecordPass(ctx context.Context, rec PassRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO passes (
            pass_id, origin, started_at, finished_at,
            scanned, published, failed, outcome, detail
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PassID,
		rec.Origin,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Scanned,
		rec.Published,
		rec.Failed,
		rec.Outcome,
		nullableString(rec.Detail),
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// RecordItem stores one item outcome.
func (l *Ledger) RecordItem(ctx context.Context, rec ItemRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO items (
            pass_id, file_id, name, outcome, failure_kind,
            detail, duration_seconds, page_id, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PassID,
		rec.FileID,
		rec.Name,
		rec.Outcome,
		nullableString(rec.FailureKind),
		nullableString(rec.Detail),
		rec.DurationSeconds,
		nullableString(rec.PageID),
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// RecentPasses returns the most recent passes, newest first.
func (l *Ledger) RecentPasses(ctx context.Context, limit int) ([]PassRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT pass_id, origin, started_at, finished_at,
                scanned, published, failed, outcome, detail
         FROM passes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var passes []PassRecord
	for rows.Next() {
		var rec PassRecord
		var startedAt, finishedAt string
		var detail sql.NullString
		if err := rows.Scan(&rec.PassID, &rec.Origin, &startedAt, &finishedAt,
			&rec.Scanned, &rec.Published, &rec.Failed, &rec.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		rec.Detail = detail.String
		passes = append(passes, rec)
	}
	return passes, rows.Err()
}

// RecentItems returns the most recent item outcomes, newest first.
func (l *Ledger) RecentItems(ctx context.Context, limit int) ([]ItemRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT pass_id, file_id, name, outcome, failure_kind,
                detail, duration_seconds, page_id, recorded_at
         FROM items ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var rec ItemRecord
		var failureKind, detail, pageID sql.NullString
		var recordedAt string
		if err := rows.Scan(&rec.PassID, &rec.FileID, &rec.Name, &rec.Outcome,
			&failureKind, &detail, &rec.DurationSeconds, &pageID, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		rec.FailureKind = failureKind.String
		rec.Detail = detail.String
		rec.PageID = pageID.String
		rec.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		items = append(items, rec)
	}
	return items, rows.Err()
}

// PassItems returns item outcomes for one pass in recording order.
func (l *Ledger) PassItems(ctx context.Context, passID string) ([]ItemRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT pass_id, file_id, name, outcome, failure_kind,
                detail, duration_seconds, page_id, recorded_at
         FROM items WHERE pass_id = ? ORDER BY id ASC`, passID)
	if err != nil {
		return nil, fmt.Errorf("query pass items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var rec ItemRecord
		var failureKind, detail, pageID sql.NullString
		var recordedAt string
		if err := rows.Scan(&rec.PassID, &rec.FileID, &rec.Name, &rec.Outcome,
			&failureKind, &detail, &rec.DurationSeconds, &pageID, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		rec.FailureKind = failureKind.String
		rec.Detail = detail.String
		rec.PageID = pageID.String
		rec.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		items = append(items, rec)
	}
	return items, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
