package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/cursor"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/scanner"
	"scribe/internal/services"
	"scribe/internal/services/whisper"
	"scribe/internal/staging"
	"scribe/internal/summary"
	"scribe/internal/textutil"
)

// ErrPassActive is returned when a pass is triggered while another is
// running.
var ErrPassActive = errors.New("a scan pass is already running")

// defaultTag labels published pages in the database's Type select.
const defaultTag = "AI Transcription"

// Scanner yields the batch of new recordings for a pass.
type Scanner interface {
	Scan(ctx context.Context, cur cursor.Cursor) (scanner.Batch, error)
}

// Downloader fetches a recording's bytes into the staging directory.
type Downloader interface {
	Download(ctx context.Context, fileID, dest string) error
}

// Transcriber converts and transcribes staged audio.
type Transcriber interface {
	ConvertAudio(ctx context.Context, source, dest string) error
	TranscribeFile(ctx context.Context, source string) (whisper.TranscribeResult, error)
}

// Prober inspects staged audio for its duration.
type Prober interface {
	DurationSeconds(ctx context.Context, path string) (int64, error)
}

// Completer produces the raw summary payload from the transcript.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, schema json.RawMessage) (string, error)
}

// Publisher renders a record into the destination database.
type Publisher interface {
	CreatePage(ctx context.Context, record *summary.Record) (string, error)
	AppendContent(ctx context.Context, pageID string, record *summary.Record, sentences []string) error
}

// Recorder persists pass and item history.
type Recorder interface {
	RecordPass(ctx context.Context, rec ledger.PassRecord) error
	RecordItem(ctx context.Context, rec ledger.ItemRecord) error
}

// Deps gathers the pipeline's collaborators.
type Deps struct {
	Cursors     *cursor.Store
	Scanner     Scanner
	Downloader  Downloader
	Transcriber Transcriber
	Prober      Prober
	Completer   Completer
	Publisher   Publisher
	Staging     *staging.Manager
	Ledger      Recorder
	Notifier    notifications.Service
}

// ItemResult is the outcome of one item within a pass.
type ItemResult struct {
	FileID          string
	Name            string
	PageID          string
	DurationSeconds int64
	FailureKind     string
	Err             error
}

// Failed reports whether the item ended in failure.
func (r ItemResult) Failed() bool { return r.Err != nil }

// PassResult summarizes one finished pass.
type PassResult struct {
	PassID     string
	Origin     string
	StartedAt  time.Time
	FinishedAt time.Time
	Scanned    int
	Published  int
	Failed     int
	Items      []ItemResult
	Outcome    string
}

// Pipeline orchestrates scan passes.
type Pipeline struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	running   atomic.Bool
	now       func() time.Time
	newPassID func() string
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPassIDs overrides pass ID generation (tests).
func WithPassIDs(gen func() string) Option {
	return func(p *Pipeline) {
		if gen != nil {
			p.newPassID = gen
		}
	}
}

// New creates a pipeline from its collaborators.
func New(cfg *config.Config, deps Deps, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	p := &Pipeline{
		cfg:       cfg,
		deps:      deps,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		now:       time.Now,
		newPassID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Active reports whether a pass is currently running.
func (p *Pipeline) Active() bool {
	return p.running.Load()
}

// RunPass executes one scan pass. The cursor advances only when the pass
// reaches its end: pass-fatal failures leave it untouched so the next pass
// retries the same window, and item failures never block advancement.
func (p *Pipeline) RunPass(ctx context.Context, origin string) (*PassResult, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrPassActive
	}
	defer p.running.Store(false)

	result := &PassResult{
		PassID:    p.newPassID(),
		Origin:    origin,
		StartedAt: p.now(),
	}
	ctx = services.WithPassID(ctx, result.PassID)
	logger := p.logger.With(logging.String(logging.FieldPassID, result.PassID))
	logger.Info("pass started", logging.String("origin", origin))

	if p.deps.Staging != nil {
		p.deps.Staging.CleanStale(time.Duration(p.cfg.Workflow.StagingMaxAgeHr) * time.Hour)
	}

	cur, _, err := p.deps.Cursors.Load()
	if err != nil {
		return p.failPass(ctx, logger, result,
			services.Wrap(services.ErrPersistence, "pipeline", "load-cursor", "read cursor", err))
	}

	batch, err := p.deps.Scanner.Scan(ctx, cur)
	if err != nil {
		return p.failPass(ctx, logger, result, err)
	}
	result.Scanned = len(batch.Items)

	if len(batch.Items) == 0 {
		if err := p.deps.Cursors.Save(batch.Next); err != nil {
			return p.failPass(ctx, logger, result,
				services.Wrap(services.ErrPersistence, "pipeline", "save-cursor", "persist cursor", err))
		}
		result.Outcome = ledger.PassEmpty
		return p.finishPass(ctx, logger, result, nil)
	}

	if err := p.deps.Notifier.NotifyPassStarted(ctx, len(batch.Items)); err != nil {
		logger.Warn("pass-started notification failed", logging.Error(err))
	}

	for _, item := range batch.Items {
		itemResult := p.processItem(ctx, logger, item)
		result.Items = append(result.Items, itemResult)
		p.recordItem(ctx, logger, result.PassID, itemResult)

		if !itemResult.Failed() {
			result.Published++
			continue
		}
		if services.PassFatal(itemResult.Err) {
			result.Failed++
			return p.failPass(ctx, logger, result, itemResult.Err)
		}
		result.Failed++
		logger.Error("item failed",
			logging.String(logging.FieldItemID, itemResult.FileID),
			logging.String("failure_kind", itemResult.FailureKind),
			logging.Error(itemResult.Err))
		if err := p.deps.Notifier.NotifyItemFailed(ctx, itemResult.Name, itemResult.FailureKind, itemResult.Err); err != nil {
			logger.Warn("item-failed notification failed", logging.Error(err))
		}
	}

	if err := p.deps.Cursors.Save(batch.Next); err != nil {
		return p.failPass(ctx, logger, result,
			services.Wrap(services.ErrPersistence, "pipeline", "save-cursor", "persist cursor", err))
	}

	result.Outcome = ledger.PassCompleted
	return p.finishPass(ctx, logger, result, nil)
}

func (p *Pipeline) failPass(ctx context.Context, logger *slog.Logger, result *PassResult, err error) (*PassResult, error) {
	result.Outcome = ledger.PassFailed
	logger.Error("pass aborted",
		logging.String("failure_kind", services.FailureKind(err)),
		logging.Error(err))
	if notifyErr := p.deps.Notifier.NotifyPassFailed(ctx, err); notifyErr != nil {
		logger.Warn("pass-failed notification failed", logging.Error(notifyErr))
	}
	if _, finishErr := p.finishPass(ctx, logger, result, err); finishErr != nil {
		return result, finishErr
	}
	return result, err
}

func (p *Pipeline) finishPass(ctx context.Context, logger *slog.Logger, result *PassResult, passErr error) (*PassResult, error) {
	result.FinishedAt = p.now()

	if p.deps.Ledger != nil {
		detail := ""
		if passErr != nil {
			detail = passErr.Error()
		}
		rec := ledger.PassRecord{
			PassID:     result.PassID,
			Origin:     result.Origin,
			StartedAt:  result.StartedAt,
			FinishedAt: result.FinishedAt,
			Scanned:    result.Scanned,
			Published:  result.Published,
			Failed:     result.Failed,
			Outcome:    result.Outcome,
			Detail:     detail,
		}
		if err := p.deps.Ledger.RecordPass(ctx, rec); err != nil {
			logger.Warn("failed to record pass", logging.Error(err))
		}
	}

	if passErr == nil && result.Outcome == ledger.PassCompleted {
		duration := result.FinishedAt.Sub(result.StartedAt)
		if err := p.deps.Notifier.NotifyPassCompleted(ctx, result.Published, result.Failed, duration); err != nil {
			logger.Warn("pass-completed notification failed", logging.Error(err))
		}
	}

	logger.Info("pass finished",
		logging.String("outcome", result.Outcome),
		logging.Int("scanned", result.Scanned),
		logging.Int("published", result.Published),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (p *Pipeline) recordItem(ctx context.Context, logger *slog.Logger, passID string, res ItemResult) {
	if p.deps.Ledger == nil {
		return
	}
	rec := ledger.ItemRecord{
		PassID:          passID,
		FileID:          res.FileID,
		Name:            res.Name,
		DurationSeconds: res.DurationSeconds,
		PageID:          res.PageID,
		RecordedAt:      p.now(),
	}
	if res.Failed() {
		rec.Outcome = ledger.ItemFailed
		rec.FailureKind = res.FailureKind
		rec.Detail = res.Err.Error()
	} else {
		rec.Outcome = ledger.ItemPublished
	}
	if err := p.deps.Ledger.RecordItem(ctx, rec); err != nil {
		logger.Warn("failed to record item", logging.Error(err))
	}
}

// processItem walks one recording through the fetch → transcribe → clean →
// summarize → repair → publish steps. The item work dir is removed on every
// exit path.
func (p *Pipeline) processItem(ctx context.Context, logger *slog.Logger, item scanner.Item) (result ItemResult) {
	result = ItemResult{FileID: item.ID, Name: item.Name}
	defer func() {
		if result.Failed() {
			result.FailureKind = services.FailureKind(result.Err)
		}
	}()

	ctx = services.WithItemID(ctx, item.ID)
	itemLogger := logger.With(
		logging.String(logging.FieldItemID, item.ID),
		logging.String("name", item.Name))
	itemLogger.Info("processing item", logging.String("size", textutil.SizeLabel(item.Size)))

	workDir, err := p.deps.Staging.ItemDir(item.ID)
	if err != nil {
		result.Err = services.Wrap(services.ErrDownload, "pipeline", "stage", "create work dir", err)
		return result
	}
	defer p.deps.Staging.Remove(workDir)

	audioPath := filepath.Join(workDir, "audio."+item.Extension)
	if err := p.deps.Downloader.Download(services.WithStep(ctx, "fetch"), item.ID, audioPath); err != nil {
		result.Err = err
		return result
	}

	wavPath := filepath.Join(workDir, "audio.wav")
	transcribeCtx := services.WithStep(ctx, "transcribe")
	if err := p.deps.Transcriber.ConvertAudio(transcribeCtx, audioPath, wavPath); err != nil {
		result.Err = services.Wrap(services.ErrTranscription, "pipeline", "convert", "convert audio", err)
		return result
	}
	transcript, err := p.deps.Transcriber.TranscribeFile(transcribeCtx, wavPath)
	if err != nil {
		result.Err = services.Wrap(services.ErrTranscription, "pipeline", "transcribe", "run transcription", err)
		return result
	}

	if p.deps.Prober != nil {
		if seconds, probeErr := p.deps.Prober.DurationSeconds(transcribeCtx, audioPath); probeErr == nil {
			result.DurationSeconds = seconds
		} else {
			itemLogger.Warn("duration probe failed", logging.Error(probeErr))
		}
	}

	cleaned := textutil.CleanTranscript(transcript.Text)
	if cleaned == "" {
		result.Err = services.Wrap(services.ErrTranscription, "pipeline", "clean",
			"transcription produced no usable text", nil)
		return result
	}

	raw, err := p.deps.Completer.Complete(services.WithStep(ctx, "summarize"),
		summary.SystemPrompt(), summary.UserPrompt(cleaned, p.now()), summary.Schema())
	if err != nil {
		result.Err = err
		return result
	}

	record, err := summary.Repair(raw)
	if err != nil {
		result.Err = err
		return result
	}
	record.SourceURL = item.SourceURL
	record.DurationSeconds = result.DurationSeconds
	record.SizeLabel = textutil.SizeLabel(item.Size)
	record.Tag = defaultTag

	publishCtx := services.WithStep(ctx, "publish")
	pageID, err := p.deps.Publisher.CreatePage(publishCtx, record)
	if err != nil {
		result.Err = err
		return result
	}
	result.PageID = pageID
	if err := p.deps.Publisher.AppendContent(publishCtx, pageID, record, textutil.SplitSentences(cleaned)); err != nil {
		result.Err = err
		return result
	}

	itemLogger.Info("item published", logging.String("page_id", pageID))
	if err := p.deps.Notifier.NotifyPublished(ctx, record.Title, pageID); err != nil {
		itemLogger.Warn("published notification failed", logging.Error(err))
	}
	return result
}
