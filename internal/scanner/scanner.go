package scanner

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/cursor"
	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/services/drive"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Lister is the slice of the Drive service the scanner needs. ListRecent
// must return the complete set of files newer than createdAfter, newest
// first; pageSize bounds the provider's per-request pages, not the batch.
type Lister interface {
	ListRecent(ctx context.Context, createdAfter time.Time, pageSize int64) ([]drive.File, error)
	StartPageToken(ctx context.Context) (string, error)
}

// Item is a recording selected for processing.
type Item struct {
	ID          string
	Name        string
	Extension   string
	Size        int64
	CreatedTime time.Time
	SourceURL   string
}

// Batch is the outcome of one scan: the items to process, newest first, and
// the cursor the next pass resumes from.
type Batch struct {
	Items []Item
	Next  cursor.Cursor
}

// Options control the listing page size and which files qualify.
type Options struct {
	PageSize     int64
	MaxFileBytes int64
	Extensions   []string
}

// Scanner queries the watched folder and advances the watermark.
type Scanner struct {
	lister     Lister
	logger     *slog.Logger
	pageSize   int64
	maxBytes   int64
	extensions map[string]struct{}
	now        func() time.Time
}

// Option customizes the scanner.
type Option func(*Scanner)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a scanner over the given lister.
func New(lister Lister, opts Options, logger *slog.Logger, options ...Option) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	extensions := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			extensions[ext] = struct{}{}
		}
	}
	s := &Scanner{
		lister:     lister,
		logger:     logging.NewComponentLogger(logger, "scanner"),
		pageSize:   opts.PageSize,
		maxBytes:   opts.MaxFileBytes,
		extensions: extensions,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Scan returns the complete batch of files created after the cursor's
// watermark. The next watermark is computed from the returned batch, never
// from the filtered items: an empty batch advances it to now, a non-empty
// batch pins it to the oldest returned file. The lister exhausts provider
// pagination before returning, so the oldest-of-batch watermark covers
// every new file. The watermark never moves backwards.
func (s *Scanner) Scan(ctx context.Context, cur cursor.Cursor) (Batch, error) {
	files, err := s.lister.ListRecent(ctx, cur.Watermark, s.pageSize)
	if err != nil {
		if services.PassFatal(err) {
			return Batch{}, err
		}
		return Batch{}, services.Wrap(services.ErrScan, "scanner", "list",
			"query watched folder", err)
	}

	next := cursor.Cursor{ContinuationToken: cur.ContinuationToken}
	if token, tokenErr := s.lister.StartPageToken(ctx); tokenErr == nil && token != "" {
		next.ContinuationToken = token
	} else if tokenErr != nil {
		s.logger.Warn("start page token unavailable, keeping previous",
			logging.Error(tokenErr))
	}

	if len(files) == 0 {
		next.Watermark = s.now().UTC()
	} else {
		oldest := files[0].CreatedTime
		for _, f := range files[1:] {
			if f.CreatedTime.Before(oldest) {
				oldest = f.CreatedTime
			}
		}
		next.Watermark = oldest.UTC()
	}
	if next.Watermark.Before(cur.Watermark) {
		next.Watermark = cur.Watermark
	}

	batch := Batch{Next: next}
	for _, f := range files {
		item, ok := s.qualify(f)
		if !ok {
			continue
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

// qualify filters a listed file down to a processable item.
func (s *Scanner) qualify(f drive.File) (Item, bool) {
	if f.MimeType == folderMimeType {
		return Item{}, false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if _, ok := s.extensions[ext]; !ok {
		s.logger.Debug("skipping unsupported file type",
			logging.String("file_id", f.ID),
			logging.String("name", f.Name))
		return Item{}, false
	}
	if s.maxBytes > 0 && f.Size >= s.maxBytes {
		s.logger.Warn("skipping oversize file",
			logging.String("file_id", f.ID),
			logging.String("name", f.Name),
			logging.Int64("size", f.Size),
			logging.Int64("limit", s.maxBytes))
		return Item{}, false
	}
	return Item{
		ID:          f.ID,
		Name:        f.Name,
		Extension:   ext,
		Size:        f.Size,
		CreatedTime: f.CreatedTime,
		SourceURL:   f.WebViewLink,
	}, true
}
