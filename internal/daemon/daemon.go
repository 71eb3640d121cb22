package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tapetail/internal/config"
	"tapetail/internal/logging"
	"tapetail/internal/telemetry"
)

// Daemon owns the telemetry collector and enforces single-instance
// execution through a file lock in the log directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *telemetry.Collector
	logPath   string

	lockPath  string
	lock      *flock.Flock
	startedAt time.Time

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StartedAt    time.Time
	LockFilePath string
	TelemetryLog string
	APIBind      string
	HasSnapshot  bool
	Collector    telemetry.Status
}

// New constructs a daemon around an already-built collector.
func New(cfg *config.Config, collector *telemetry.Collector, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || collector == nil || logger == nil {
		return nil, errors.New("daemon requires config, collector, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "tapetaild.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		logPath:   filepath.Join(cfg.Paths.LogDir, "tapetail.log"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the collector loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tapetail daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.collector.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start collector: %w", err)
	}

	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("tapetail daemon started",
		slog.String("lock", d.lockPath),
		slog.String("source", d.cfg.Source.TelemetryLog),
	)
	return nil
}

// Stop halts the collector and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.collector.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tapetail daemon stopped")
}

// Snapshot returns the latest published snapshot, or ok=false before the
// collector has seen any telemetry.
func (d *Daemon) Snapshot() (*telemetry.Snapshot, bool) {
	return d.collector.Snapshot()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	_, hasSnapshot := d.collector.Snapshot()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StartedAt:    d.startedAt,
		LockFilePath: d.lockPath,
		TelemetryLog: d.cfg.Source.TelemetryLog,
		APIBind:      d.cfg.Paths.APIBind,
		HasSnapshot:  hasSnapshot,
		Collector:    d.collector.Status(),
	}
}
