package config

import (
	"fmt"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	if err := c.normalizeCollector(); err != nil {
		return err
	}
	if err := c.normalizeSimulator(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeSource() error {
	var err error
	if strings.TrimSpace(c.Source.TelemetryLog) == "" {
		c.Source.TelemetryLog = defaultTelemetryLog
	}
	if c.Source.TelemetryLog, err = expandPath(c.Source.TelemetryLog); err != nil {
		return fmt.Errorf("source.telemetry_log: %w", err)
	}
	return nil
}

func (c *Config) normalizeCollector() error {
	var err error
	if c.Collector.pollInterval, err = parseDurationField("collector.poll_interval", c.Collector.PollInterval, defaultPollInterval); err != nil {
		return err
	}
	if c.Collector.backoffFloor, err = parseDurationField("collector.backoff_floor", c.Collector.BackoffFloor, defaultBackoffFloor); err != nil {
		return err
	}
	if c.Collector.backoffCap, err = parseDurationField("collector.backoff_cap", c.Collector.BackoffCap, defaultBackoffCap); err != nil {
		return err
	}
	if c.Collector.BackoffMultiplier == 0 {
		c.Collector.BackoffMultiplier = defaultBackoffMultiplier
	}
	return nil
}

func (c *Config) normalizeSimulator() error {
	var err error
	if c.Simulator.interval, err = parseDurationField("simulator.interval", c.Simulator.Interval, defaultSimulatorInterval); err != nil {
		return err
	}
	if c.Simulator.Producers <= 0 {
		c.Simulator.Producers = defaultSimulatorProducers
	}
	if c.Simulator.Consumers <= 0 {
		c.Simulator.Consumers = defaultSimulatorConsumers
	}
	if c.Simulator.BufferCapacity <= 0 {
		c.Simulator.BufferCapacity = defaultSimulatorCapacity
	}
	if c.Simulator.TargetRate <= 0 {
		c.Simulator.TargetRate = defaultSimulatorRate
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func parseDurationField(key, value, fallback string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = fallback
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
