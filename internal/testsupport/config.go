package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tapetail/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	telemetryLog string
	apiBind      string
	pollInterval string
	backoffFloor string
	backoffCap   string
}

// NewConfig produces a fully loaded config backed by unique temp
// directories per test. It writes a config file and runs it through the
// normal load path so duration fields are parsed exactly as in production.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	builder := &configBuilder{
		telemetryLog: filepath.Join(base, "telemetry.log"),
		apiBind:      "127.0.0.1:0",
		pollInterval: "10ms",
		backoffFloor: "10ms",
		backoffCap:   "40ms",
	}
	for _, opt := range opts {
		opt(builder)
	}

	content := fmt.Sprintf(`[paths]
log_dir = %q
api_bind = %q

[source]
telemetry_log = %q

[collector]
poll_interval = %q
backoff_floor = %q
backoff_cap = %q
`,
		filepath.Join(base, "logs"),
		builder.apiBind,
		builder.telemetryLog,
		builder.pollInterval,
		builder.backoffFloor,
		builder.backoffCap,
	)

	path := filepath.Join(base, "tapetail.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return cfg
}

// WithTelemetryLog overrides the source log path on the test config.
func WithTelemetryLog(path string) ConfigOption {
	return func(b *configBuilder) {
		b.telemetryLog = path
	}
}

// WithAPIBind overrides the HTTP API bind address on the test config.
func WithAPIBind(bind string) ConfigOption {
	return func(b *configBuilder) {
		b.apiBind = bind
	}
}

// WithPollInterval overrides the collector cadence on the test config.
func WithPollInterval(interval string) ConfigOption {
	return func(b *configBuilder) {
		b.pollInterval = interval
	}
}
