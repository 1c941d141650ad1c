package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"scribe/internal/config"
	"scribe/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, cleanup, err := bootstrap(cfg, logger)
	if err != nil {
		logger.Error("bootstrap", logging.Error(err))
		return
	}
	defer cleanup()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("scribed shutting down", slog.String("reason", "signal"))
	d.Stop()
	d.Wait()
}
