package main

import (
	"fmt"
	"log/slog"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/cursor"
	"scribe/internal/daemon"
	"scribe/internal/ledger"
	"scribe/internal/notifications"
	"scribe/internal/pipeline"
	"scribe/internal/scanner"
	"scribe/internal/services/drive"
	"scribe/internal/services/ffprobe"
	"scribe/internal/services/llm"
	"scribe/internal/services/notion"
	"scribe/internal/services/whisper"
	"scribe/internal/staging"
)

// bootstrap assembles the daemon from configuration. The returned cleanup
// closes resources the daemon does not own itself.
func bootstrap(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	driveSvc := drive.NewService(drive.Config{
		FolderID:        cfg.Drive.FolderID,
		CredentialsPath: cfg.Drive.CredentialsPath,
		TokenPath:       cfg.Drive.TokenPath,
		RedirectBaseURL: cfg.Drive.RedirectBaseURL,
		PageSize:        cfg.Drive.PageSize,
	}, logger)

	scan := scanner.New(driveSvc, scanner.Options{
		PageSize:     cfg.Drive.PageSize,
		MaxFileBytes: cfg.MaxFileBytes(),
		Extensions:   cfg.Drive.Extensions,
	}, logger)

	transcriber := whisper.NewService(whisper.Config{
		Binary:     cfg.WhisperBinary(),
		ModelPath:  cfg.Whisper.ModelPath,
		Language:   cfg.Whisper.Language,
		GPUEnabled: cfg.Whisper.GPUEnabled,
		Threads:    cfg.Whisper.Threads,
	}, whisper.FFmpegCommand)

	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxTokens:      cfg.LLM.MaxTokens,
		SchemaEnabled:  cfg.LLM.SchemaEnabled,
	})

	publisher := notion.NewPublisher(notion.Config{
		Token:      cfg.Notion.Token,
		DatabaseID: cfg.Notion.DatabaseID,
	}, logger)

	history, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	cursors := cursor.NewStore(cfg.CursorPath())

	pipe := pipeline.New(cfg, pipeline.Deps{
		Cursors:     cursors,
		Scanner:     scan,
		Downloader:  driveSvc,
		Transcriber: transcriber,
		Prober:      ffprobe.NewProber(cfg.FFprobeBinary()),
		Completer:   completer,
		Publisher:   publisher,
		Staging:     staging.NewManager(cfg.Paths.StagingDir, logger),
		Ledger:      history,
		Notifier:    notifications.NewService(cfg),
	}, logger)

	d, err := daemon.New(cfg, pipe, driveSvc, cursors, api.NewHistoryService(history), logger)
	if err != nil {
		history.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := history.Close(); err != nil {
			logger.Warn("close ledger", slog.String("error", err.Error()))
		}
	}
	return d, cleanup, nil
}
