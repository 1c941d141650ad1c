package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/cursor"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/services"
	"scribe/internal/services/drive"
)

// Daemon coordinates the pipeline, the HTTP surface, and the poll loop, and
// enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	pipe    *pipeline.Pipeline
	drive   *drive.Service
	cursors *cursor.Store
	history *api.HistoryService

	lockPath   string
	lock       *flock.Flock
	oauthState string

	apiSrv  *apiServer
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, pipe *pipeline.Pipeline, driveSvc *drive.Service, cursors *cursor.Store, history *api.HistoryService, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || pipe == nil || driveSvc == nil || cursors == nil {
		return nil, errors.New("daemon requires config, pipeline, drive service, and cursor store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		pipe:       pipe,
		drive:      driveSvc,
		cursors:    cursors,
		history:    history,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		oauthState: uuid.NewString(),
	}, nil
}

// Start acquires the daemon lock, starts the HTTP surface, and launches the
// poll loop when polling is enabled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.releaseLock()
		return err
	}
	d.apiSrv = srv
	if err := d.apiSrv.start(d.ctx); err != nil {
		d.releaseLock()
		return err
	}

	if d.cfg.Workflow.PollingEnabled {
		d.wg.Add(1)
		go d.pollLoop()
	}

	d.running.Store(true)
	d.logger.Info("scribe daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the HTTP surface, stops polling, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	if d.apiSrv != nil {
		d.apiSrv.stop()
		d.apiSrv = nil
	}
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Wait blocks until the daemon's context is done.
func (d *Daemon) Wait() {
	if d.ctx != nil {
		<-d.ctx.Done()
	}
}

func (d *Daemon) releaseLock() {
	if d.lock != nil {
		_ = d.lock.Unlock()
	}
	_ = os.Remove(d.lockPath)
}

// pollLoop runs a pass immediately and then on every poll tick. Ticks that
// land while a pass is running or before authentication are skipped.
func (d *Daemon) pollLoop() {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Workflow.PollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.runPollPass()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.runPollPass()
		}
	}
}

func (d *Daemon) runPollPass() {
	if !d.drive.HasToken() {
		d.logger.Debug("skipping poll pass, not authenticated")
		return
	}
	_, err := d.pipe.RunPass(d.ctx, "poll")
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrPassActive):
		d.logger.Debug("skipping poll tick, pass already running")
	case errors.Is(err, services.ErrCredential):
		d.logger.Error("poll pass needs re-authentication", logging.Error(err))
	default:
		d.logger.Error("poll pass failed", logging.Error(err))
	}
}

// TriggerScan runs one pass on demand and waits for its outcome.
func (d *Daemon) TriggerScan(ctx context.Context, origin string) (*pipeline.PassResult, error) {
	return d.pipe.RunPass(ctx, origin)
}

// StartScan launches one pass in the background. Outcomes land in the
// ledger and logs rather than the caller.
func (d *Daemon) StartScan(origin string) error {
	if d.pipe.Active() {
		return pipeline.ErrPassActive
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_, err := d.pipe.RunPass(d.ctx, origin)
		switch {
		case err == nil:
		case errors.Is(err, pipeline.ErrPassActive):
			d.logger.Debug("scan trigger lost the race to an active pass")
		default:
			d.logger.Error("triggered pass failed", logging.Error(err))
		}
	}()
	return nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status() api.DaemonStatus {
	status := api.DaemonStatus{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		Authenticated: d.drive.HasToken(),
		PassActive:    d.pipe.Active(),
		PollingOn:     d.cfg.Workflow.PollingEnabled,
		LedgerPath:    d.cfg.LedgerPath(),
		LockFilePath:  d.lockPath,
	}
	if cur, found, err := d.cursors.Load(); err == nil && found {
		status.Watermark = cur.Watermark
	}
	return status
}
