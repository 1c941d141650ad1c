package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/cursor"
	"scribe/internal/pipeline"
	"scribe/internal/scanner"
	"scribe/internal/services/drive"
	"scribe/internal/services/whisper"
	"scribe/internal/staging"
	"scribe/internal/summary"
	"scribe/internal/testsupport"
)

type blockingScanner struct {
	block   chan struct{}
	started chan struct{}
}

func (s *blockingScanner) Scan(ctx context.Context, cur cursor.Cursor) (scanner.Batch, error) {
	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
		}
	}
	return scanner.Batch{Next: cursor.Cursor{Watermark: time.Now()}}, nil
}

type nullDownloader struct{}

func (nullDownloader) Download(context.Context, string, string) error { return nil }

type nullTranscriber struct{}

func (nullTranscriber) ConvertAudio(context.Context, string, string) error { return nil }
func (nullTranscriber) TranscribeFile(context.Context, string) (whisper.TranscribeResult, error) {
	return whisper.TranscribeResult{Text: "hello"}, nil
}

type nullCompleter struct{}

func (nullCompleter) Complete(context.Context, string, string, json.RawMessage) (string, error) {
	return "{}", nil
}

type nullPublisher struct{}

func (nullPublisher) CreatePage(context.Context, *summary.Record) (string, error) {
	return "page-1", nil
}
func (nullPublisher) AppendContent(context.Context, string, *summary.Record, []string) error {
	return nil
}

type testDaemon struct {
	daemon  *Daemon
	scanner *blockingScanner
	baseURL string
}

func newTestDaemon(t *testing.T, apiToken string) *testDaemon {
	t.Helper()

	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Paths.APIToken = apiToken
	})
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	credentials := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(cfg.Drive.CredentialsPath, []byte(credentials), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	driveSvc := drive.NewService(drive.Config{
		FolderID:        cfg.Drive.FolderID,
		CredentialsPath: cfg.Drive.CredentialsPath,
		TokenPath:       cfg.Drive.TokenPath,
	}, nil)

	cursors := cursor.NewStore(cfg.CursorPath())
	blocker := &blockingScanner{}
	pipe := pipeline.New(cfg, pipeline.Deps{
		Cursors:     cursors,
		Scanner:     blocker,
		Downloader:  nullDownloader{},
		Transcriber: nullTranscriber{},
		Completer:   nullCompleter{},
		Publisher:   nullPublisher{},
		Staging:     staging.NewManager(cfg.Paths.StagingDir, nil),
	}, nil)

	d, err := New(cfg, pipe, driveSvc, cursors, api.NewHistoryService(nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	return &testDaemon{
		daemon:  d,
		scanner: blocker,
		baseURL: "http://" + d.apiSrv.Addr(),
	}
}

func (td *testDaemon) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, td.baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	td := newTestDaemon(t, "")

	second, err := New(td.daemon.cfg, td.daemon.pipe, td.daemon.drive, td.daemon.cursors, td.daemon.history, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to start")
	}
}

func TestStatusEndpoint(t *testing.T) {
	td := newTestDaemon(t, "")

	resp := td.get(t, "/api/status", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Running || status.Authenticated || status.PassActive {
		t.Errorf("status = %+v", status)
	}
}

func TestAPITokenGuardsEndpoints(t *testing.T) {
	td := newTestDaemon(t, "secret-token")

	resp := td.get(t, "/api/status", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d", resp.StatusCode)
	}

	resp = td.get(t, "/api/status", "secret-token")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("with token: status = %d", resp.StatusCode)
	}

	// Health stays open.
	resp = td.get(t, "/healthz", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status = %d", resp.StatusCode)
	}
}

func TestScanEndpointRejectsConcurrentPass(t *testing.T) {
	td := newTestDaemon(t, "")
	td.scanner.block = make(chan struct{})
	td.scanner.started = make(chan struct{}, 1)

	firstDone := make(chan int, 1)
	go func() {
		resp, err := http.Post(td.baseURL+"/api/scan?wait=1", "application/json", nil)
		if err != nil {
			firstDone <- 0
			return
		}
		resp.Body.Close()
		firstDone <- resp.StatusCode
	}()

	<-td.scanner.started
	resp, err := http.Post(td.baseURL+"/api/scan", "application/json", nil)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second scan status = %d, want 409", resp.StatusCode)
	}

	close(td.scanner.block)
	if code := <-firstDone; code != http.StatusOK {
		t.Fatalf("first scan status = %d", code)
	}
}

func TestScanEndpointAcksImmediately(t *testing.T) {
	td := newTestDaemon(t, "")
	td.scanner.block = make(chan struct{})
	td.scanner.started = make(chan struct{}, 1)
	defer close(td.scanner.block)

	resp, err := http.Post(td.baseURL+"/api/scan", "application/json", nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	// The pass keeps running after the ack.
	<-td.scanner.started
	if !td.daemon.pipe.Active() {
		t.Error("pass should still be active after the ack")
	}
}

func TestAuthEndpointRedirectsToConsent(t *testing.T) {
	td := newTestDaemon(t, "")

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(td.baseURL + "/auth")
	if err != nil {
		t.Fatalf("GET /auth: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		t.Fatal("missing Location header")
	}
	wantState := fmt.Sprintf("state=%s", td.daemon.oauthState)
	if !strings.Contains(location, wantState) {
		t.Errorf("consent url missing %q: %s", wantState, location)
	}
}
