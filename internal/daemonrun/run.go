package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"tapetail/internal/config"
	"tapetail/internal/daemon"
	"tapetail/internal/ipc"
	"tapetail/internal/logging"
	"tapetail/internal/metrics"
	"tapetail/internal/preflight"
	"tapetail/internal/telemetry"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tapetail daemon runtime loop and blocks until a signal
// or an IPC stop request arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	sessionID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tapetail-%s.log", runID))

	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tapetail.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tapetail-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "tapetaild.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	for _, check := range preflight.RunAll(cfg) {
		if check.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "collection or serving may not work until fixed"),
			logging.String(logging.FieldErrorHint, "fix the reported path or address and restart"))
	}

	sink := metrics.NewPrometheusSink(logger)
	hub := daemon.NewWatchHub(logger)
	collector := telemetry.NewCollector(cfg.Source.TelemetryLog, sink, logger, telemetry.Settings{
		PollInterval:      cfg.Collector.PollIntervalDuration(),
		BackoffFloor:      cfg.Collector.BackoffFloorDuration(),
		BackoffCap:        cfg.Collector.BackoffCapDuration(),
		BackoffMultiplier: cfg.Collector.BackoffMultiplier,
	}, telemetry.WithPublishHook(hub.Publish))

	d, err := daemon.New(cfg, collector, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	defer d.Stop()

	apiServer, err := daemon.NewAPIServer(cfg, d, sink, hub, logger)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	if apiServer != nil {
		if err := apiServer.Start(signalCtx); err != nil {
			d.Stop()
			return err
		}
		defer apiServer.Stop()
	}

	socketPath := filepath.Join(cfg.Paths.LogDir, "tapetaild.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger, cancel)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("tapetail daemon ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("run_id", runID),
		logging.String("socket", socketPath),
		logging.String(logging.FieldPath, cfg.Source.TelemetryLog))

	<-signalCtx.Done()
	logger.Info("tapetail daemon shutting down")
	return nil
}

// ensureCurrentLogPointer keeps a stable tapetail.log name pointing at the
// newest per-run log file. Hard link is the fallback for filesystems that
// refuse symlinks.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tapetail.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
