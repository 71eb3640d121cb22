package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tapetail/internal/config"
	"tapetail/internal/logging"
	"tapetail/internal/simulate"
)

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var (
		path           string
		interval       time.Duration
		runtime        time.Duration
		rate           int
		producers      int
		consumers      int
		bufferCapacity int
		resetAfter     int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write synthetic telemetry to exercise the collector",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			settings := simulateSettings(cfg, path, interval, rate, producers, consumers, bufferCapacity, resetAfter)

			logger, err := logging.New(logging.Options{Level: "info", Format: cfg.Logging.Format})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx := cmd.Context()
			if runtime > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, runtime)
				defer cancel()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Writing telemetry to %s (interval %s, target %d orders/sec)\n",
				settings.Path, settings.Interval, settings.TargetRate)
			return simulate.NewWriter(settings, logger).Run(runCtx)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Telemetry log to write (defaults to the configured source)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Seconds between telemetry lines (defaults from config)")
	cmd.Flags().DurationVar(&runtime, "runtime", 0, "Stop after this duration (0 runs until interrupted)")
	cmd.Flags().IntVar(&rate, "rate", 0, "Target orders per second")
	cmd.Flags().IntVar(&producers, "producers", 0, "Simulated producer count")
	cmd.Flags().IntVar(&consumers, "consumers", 0, "Simulated consumer count")
	cmd.Flags().IntVar(&bufferCapacity, "buffer-capacity", 0, "Simulated ring buffer capacity")
	cmd.Flags().IntVar(&resetAfter, "reset-after", 0, "Reset cumulative counters after N lines (0 disables)")
	return cmd
}

func simulateSettings(cfg *config.Config, path string, interval time.Duration, rate, producers, consumers, bufferCapacity, resetAfter int) simulate.Settings {
	settings := simulate.Settings{
		Path:           cfg.Source.TelemetryLog,
		Interval:       cfg.Simulator.IntervalDuration(),
		Producers:      cfg.Simulator.Producers,
		Consumers:      cfg.Simulator.Consumers,
		BufferCapacity: cfg.Simulator.BufferCapacity,
		TargetRate:     cfg.Simulator.TargetRate,
		ResetAfter:     resetAfter,
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		settings.Path = trimmed
	}
	if interval > 0 {
		settings.Interval = interval
	}
	if rate > 0 {
		settings.TargetRate = rate
	}
	if producers > 0 {
		settings.Producers = producers
	}
	if consumers > 0 {
		settings.Consumers = consumers
	}
	if bufferCapacity > 0 {
		settings.BufferCapacity = bufferCapacity
	}
	return settings
}
