package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tapetail/internal/logging"
)

// Settings shape the synthetic telemetry stream.
type Settings struct {
	Path           string
	Interval       time.Duration
	Producers      int
	Consumers      int
	BufferCapacity int
	TargetRate     int
	// ResetAfter forces the cumulative counters back to zero after that
	// many lines, mimicking a producer restart. Zero disables resets.
	ResetAfter int
}

func (s Settings) withDefaults() Settings {
	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	if s.Producers <= 0 {
		s.Producers = 2
	}
	if s.Consumers <= 0 {
		s.Consumers = 2
	}
	if s.BufferCapacity <= 0 {
		s.BufferCapacity = 1024
	}
	if s.TargetRate <= 0 {
		s.TargetRate = 500
	}
	return s
}

// Writer appends synthetic order-pipeline telemetry lines to a log file at
// a fixed cadence. It exists for demos and soak tests so the collector can
// be exercised without the real pipeline running.
type Writer struct {
	settings Settings
	logger   *slog.Logger
	rng      *rand.Rand

	produced int64
	consumed int64
	dropped  int64
	errors   int64
	batches  int64
	buffer   int64
	written  int
}

// NewWriter builds a writer for the given settings.
func NewWriter(settings Settings, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		settings: settings.withDefaults(),
		logger:   logging.NewComponentLogger(logger, "simulator"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run appends one line per interval until ctx is cancelled. The file is
// created on the first write; its parent directory must already exist or
// be creatable.
func (w *Writer) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(w.settings.Path), 0o755); err != nil {
		return fmt.Errorf("create telemetry log directory: %w", err)
	}

	file, err := os.OpenFile(w.settings.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open telemetry log: %w", err)
	}
	defer file.Close()

	w.logger.Info("simulator writing telemetry",
		logging.String(logging.FieldPath, w.settings.Path),
		logging.Duration("interval", w.settings.Interval),
		logging.Int("target_rate", w.settings.TargetRate),
	)

	ticker := time.NewTicker(w.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := file.WriteString(w.nextLine() + "\n"); err != nil {
				return fmt.Errorf("append telemetry line: %w", err)
			}
		}
	}
}

// nextLine advances the synthetic pipeline by one interval and renders it.
func (w *Writer) nextLine() string {
	s := w.settings

	if s.ResetAfter > 0 && w.written > 0 && w.written%s.ResetAfter == 0 {
		w.produced = 0
		w.consumed = 0
		w.dropped = 0
		w.errors = 0
		w.batches = 0
		w.logger.Debug("simulator reset counters", logging.Int("lines_written", w.written))
	}
	w.written++

	perInterval := float64(s.TargetRate) * s.Interval.Seconds()
	produced := int64(perInterval * (0.8 + 0.4*w.rng.Float64()))
	if produced < int64(s.Producers) {
		produced = int64(s.Producers)
	}

	// Consumption capacity scales with the consumer/producer ratio, so an
	// undersized consumer pool visibly backs the buffer up.
	drain := float64(s.Consumers) / float64(s.Producers)
	if drain > 1 {
		drain = 1
	}
	consumed := int64(float64(produced) * drain * (0.85 + 0.15*w.rng.Float64()))
	if consumed > produced {
		consumed = produced
	}
	dropped := produced - consumed
	if w.rng.Intn(20) == 0 {
		w.errors++
	}

	w.produced += produced
	w.consumed += consumed
	w.dropped += dropped
	w.batches++

	w.buffer += produced - consumed
	if w.buffer < 0 {
		w.buffer = 0
	}
	if w.buffer > int64(s.BufferCapacity) {
		w.buffer = int64(s.BufferCapacity)
	}

	throughput := float64(consumed) / s.Interval.Seconds()
	avgLatency := 800.0 + 400.0*w.rng.Float64()
	p95 := avgLatency * (1.8 + 0.4*w.rng.Float64())
	p99 := p95 * (1.3 + 0.3*w.rng.Float64())

	fields := []string{
		fmt.Sprintf("%d", time.Now().UnixNano()),
		fmt.Sprintf("%d", w.produced),
		fmt.Sprintf("%d", w.consumed),
		fmt.Sprintf("%d", w.dropped),
		fmt.Sprintf("%d", w.buffer),
		fmt.Sprintf("%d", s.BufferCapacity),
		fmt.Sprintf("%.1f", throughput),
		fmt.Sprintf("%.1f", avgLatency),
		fmt.Sprintf("%.1f", p95),
		fmt.Sprintf("%.1f", p99),
		fmt.Sprintf("%d", w.errors),
		fmt.Sprintf("%d", w.batches),
	}
	return strings.Join(fields, ",")
}
