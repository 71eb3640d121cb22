package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Source describes the telemetry log the collector tails.
type Source struct {
	TelemetryLog string `toml:"telemetry_log"`
}

// Collector contains poll cadence and failure backoff settings. Durations
// are TOML strings in time.ParseDuration syntax ("1s", "500ms").
type Collector struct {
	PollInterval      string  `toml:"poll_interval"`
	BackoffFloor      string  `toml:"backoff_floor"`
	BackoffCap        string  `toml:"backoff_cap"`
	BackoffMultiplier float64 `toml:"backoff_multiplier"`

	pollInterval time.Duration
	backoffFloor time.Duration
	backoffCap   time.Duration
}

// PollIntervalDuration returns the parsed poll interval.
func (c Collector) PollIntervalDuration() time.Duration { return c.pollInterval }

// BackoffFloorDuration returns the parsed minimum retry delay.
func (c Collector) BackoffFloorDuration() time.Duration { return c.backoffFloor }

// BackoffCapDuration returns the parsed maximum retry delay.
func (c Collector) BackoffCapDuration() time.Duration { return c.backoffCap }

// Simulator contains defaults for the synthetic telemetry producer.
type Simulator struct {
	Interval       string `toml:"interval"`
	Producers      int    `toml:"producers"`
	Consumers      int    `toml:"consumers"`
	BufferCapacity int    `toml:"buffer_capacity"`
	TargetRate     int    `toml:"target_rate"`

	interval time.Duration
}

// IntervalDuration returns the parsed write cadence.
func (s Simulator) IntervalDuration() time.Duration { return s.interval }

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tapetail.
//
// Configuration sections by subsystem:
//   - Paths: log directory and HTTP API bind address
//   - Source: the telemetry log produced by the order pipeline
//   - Collector: poll cadence and failure backoff envelope
//   - Simulator: synthetic producer defaults for demos and soak tests
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Source    Source    `toml:"source"`
	Collector Collector `toml:"collector"`
	Simulator Simulator `toml:"simulator"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tapetail/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and all duration strings parsed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/tapetail/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tapetail.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation. The
// telemetry log's parent directory is created on a best-effort basis so the
// daemon can start before the producer does.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if dir := filepath.Dir(c.Source.TelemetryLog); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
