package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"scribe/internal/logging"
	"scribe/internal/services"
)

// Config captures the Drive settings the service needs.
type Config struct {
	FolderID        string
	CredentialsPath string
	TokenPath       string
	RedirectBaseURL string
	PageSize        int64
}

// File is the slice of Drive file metadata the pipeline consumes.
type File struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	CreatedTime time.Time
	WebViewLink string
}

// Service talks to the Drive API for one watched folder.
type Service struct {
	cfg    Config
	logger *slog.Logger

	// newAPI is swapped out in tests to avoid real credentials.
	newAPI func(ctx context.Context) (*driveapi.Service, error)
}

// Option customizes the service.
type Option func(*Service)

// WithAPIFactory overrides how the underlying API client is built (tests).
func WithAPIFactory(factory func(ctx context.Context) (*driveapi.Service, error)) Option {
	return func(s *Service) {
		if factory != nil {
			s.newAPI = factory
		}
	}
}

// NewService creates a Drive service for the configured folder.
func NewService(cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "drive"),
	}
	s.newAPI = s.apiFromToken
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// apiFromToken builds an API client from the saved refresh token.
func (s *Service) apiFromToken(ctx context.Context) (*driveapi.Service, error) {
	conf, err := s.oauthConfig()
	if err != nil {
		return nil, err
	}
	token, err := s.loadToken()
	if err != nil {
		return nil, err
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken})
	api, err := driveapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("drive: build client: %w", err)
	}
	return api, nil
}

// ListRecent returns every file in the watched folder created after the
// given bound, ordered newest-created first. The listing follows Drive's
// page tokens until exhausted; pageSize only bounds the per-request page, so
// the watermark is always computed from a complete batch and a backlog
// larger than one page can never be skipped.
func (s *Service) ListRecent(ctx context.Context, createdAfter time.Time, pageSize int64) ([]File, error) {
	api, err := s.newAPI(ctx)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	query := fmt.Sprintf("'%s' in parents and trashed = false", s.cfg.FolderID)
	if !createdAfter.IsZero() {
		query += fmt.Sprintf(" and createdTime > '%s'", createdAfter.UTC().Format(time.RFC3339))
	}

	var files []File
	pageToken := ""
	for {
		call := api.Files.List().
			Context(ctx).
			Q(query).
			OrderBy("createdTime desc").
			PageSize(pageSize).
			Fields(googleapi.Field("nextPageToken, files(id, name, mimeType, size, createdTime, webViewLink)"))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, s.classify("list", err)
		}
		for _, f := range resp.Files {
			created, parseErr := time.Parse(time.RFC3339, f.CreatedTime)
			if parseErr != nil {
				s.logger.Warn("skipping file with unparsable createdTime",
					logging.String("file_id", f.Id),
					logging.String("created_time", f.CreatedTime))
				continue
			}
			files = append(files, File{
				ID:          f.Id,
				Name:        f.Name,
				MimeType:    f.MimeType,
				Size:        f.Size,
				CreatedTime: created.UTC(),
				WebViewLink: f.WebViewLink,
			})
		}
		if resp.NextPageToken == "" {
			return files, nil
		}
		pageToken = resp.NextPageToken
	}
}

// StartPageToken fetches the changes-feed bookmark stored alongside the
// watermark as the cursor's continuation token.
func (s *Service) StartPageToken(ctx context.Context) (string, error) {
	api, err := s.newAPI(ctx)
	if err != nil {
		return "", err
	}
	resp, err := api.Changes.GetStartPageToken().Context(ctx).Do()
	if err != nil {
		return "", s.classify("start-page-token", err)
	}
	return resp.StartPageToken, nil
}

// Download streams a file's content to dest.
func (s *Service) Download(ctx context.Context, fileID, dest string) error {
	api, err := s.newAPI(ctx)
	if err != nil {
		return err
	}
	resp, err := api.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		if classified := s.classify("download", err); services.PassFatal(classified) {
			return classified
		}
		return services.Wrap(services.ErrDownload, "drive", "download",
			"fetch file content", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return services.Wrap(services.ErrDownload, "drive", "download",
			"create staging file", err)
	}
	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return services.Wrap(services.ErrDownload, "drive", "download",
			"write staging file", err)
	}
	s.logger.Debug("downloaded file",
		logging.String("file_id", fileID),
		logging.Int64("bytes", written))
	return nil
}
