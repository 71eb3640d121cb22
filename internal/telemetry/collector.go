package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tapetail/internal/logging"
)

const (
	defaultPollInterval      = time.Second
	defaultBackoffFloor      = time.Second
	defaultBackoffCap        = 30 * time.Second
	defaultBackoffMultiplier = 2.0
)

// Settings control the poll cadence and the failure backoff envelope.
type Settings struct {
	PollInterval      time.Duration
	BackoffFloor      time.Duration
	BackoffCap        time.Duration
	BackoffMultiplier float64
}

func (s Settings) withDefaults() Settings {
	if s.PollInterval <= 0 {
		s.PollInterval = defaultPollInterval
	}
	if s.BackoffFloor <= 0 {
		s.BackoffFloor = defaultBackoffFloor
	}
	if s.BackoffCap < s.BackoffFloor {
		s.BackoffCap = defaultBackoffCap
		if s.BackoffCap < s.BackoffFloor {
			s.BackoffCap = s.BackoffFloor
		}
	}
	if s.BackoffMultiplier < 1 {
		s.BackoffMultiplier = defaultBackoffMultiplier
	}
	return s
}

// Status is a point-in-time view of the collector loop for the status
// surfaces.
type Status struct {
	Running      bool
	Cycles       uint64
	Records      uint64
	SkippedLines uint64
	Regressions  uint64
	CursorOffset int64
	CursorResets uint64
	Backoff      time.Duration
	LastError    string
	LastPublish  time.Time
}

// Collector drives the tail, parse, delta, publish cycle on a fixed
// cadence. One background goroutine owns the tailer and counter bank; all
// other goroutines only read the published snapshot or the Status copy.
type Collector struct {
	tailer    *Tailer
	bank      *CounterBank
	publisher *Publisher
	sink      Sink
	logger    *slog.Logger
	settings  Settings
	onPublish func(*Snapshot)

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	sequence uint64
	stats    Status
}

// Option configures optional Collector behavior.
type Option func(*Collector)

// WithPublishHook registers fn to run on the collector goroutine after each
// snapshot publish. The hook must not block.
func WithPublishHook(fn func(*Snapshot)) Option {
	return func(c *Collector) {
		c.onPublish = fn
	}
}

// NewCollector builds a collector that tails the telemetry log at path and
// reports measurements to sink.
func NewCollector(path string, sink Sink, logger *slog.Logger, settings Settings, opts ...Option) *Collector {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Collector{
		tailer:    NewTailer(path),
		bank:      &CounterBank{},
		publisher: &Publisher{},
		sink:      sink,
		logger:    logging.NewComponentLogger(logger, "collector"),
		settings:  settings.withDefaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the most recently published snapshot, or ok=false before
// the first publish.
func (c *Collector) Snapshot() (*Snapshot, bool) {
	return c.publisher.Current()
}

// Start begins background polling.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("collector already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.stats.Running = true
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(runCtx)
	return nil
}

// Stop halts polling and waits for an in-flight cycle to finish, so no
// partially applied batch is left behind.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	c.mu.Lock()
	c.stats.Running = false
	c.mu.Unlock()
}

// Status returns a copy of the loop counters.
func (c *Collector) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := c.stats
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

func (c *Collector) run(ctx context.Context) {
	defer c.wg.Done()

	backoff := c.settings.BackoffFloor
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.cycle(); err != nil {
			c.noteFailure(err, backoff)
			c.logger.Warn("telemetry poll failed",
				logging.Error(err),
				logging.Duration("retry_in", backoff),
			)
			if !c.sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.settings)
			continue
		}

		backoff = c.settings.BackoffFloor
		if !c.sleep(ctx, c.settings.PollInterval) {
			return
		}
	}
}

// cycle performs one full pass: read new lines, parse them, apply every
// record's deltas to the sink, and publish the newest record's state. When
// several lines accumulated since the last pass, every delta still reaches
// the counters so totals stay correct, while only the last record drives
// the published snapshot.
func (c *Collector) cycle() error {
	lines, err := c.tailer.ReadNew()
	if err != nil {
		return err
	}

	var (
		records     uint64
		skipped     uint64
		regressions uint64
		last        Record
		lastDeltas  Deltas
		have        bool
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			skipped++
			c.logger.Debug("skipping malformed telemetry line", logging.Error(err))
			continue
		}
		deltas := c.bank.Apply(rec)
		c.observe(rec, deltas)
		records++
		regressions += uint64(deltas.Regressions)
		last = rec
		lastDeltas = deltas
		have = true
	}

	if skipped > 0 {
		c.sink.IncrementCounter(MetricLinesSkipped, nil, float64(skipped))
		c.logger.Warn("skipped malformed telemetry lines", logging.Uint64("lines", skipped))
	}
	c.sink.IncrementCounter(MetricPollCycles, nil, 1)

	var published *Snapshot
	if have {
		published = c.buildSnapshot(last, lastDeltas)
		c.publisher.Publish(published)
		if c.onPublish != nil {
			c.onPublish(published)
		}
	}

	c.noteCycle(records, skipped, regressions, published)
	return nil
}

func (c *Collector) buildSnapshot(rec Record, deltas Deltas) *Snapshot {
	c.mu.Lock()
	c.sequence++
	seq := c.sequence
	c.mu.Unlock()

	return &Snapshot{
		TimestampNS:       rec.TimestampNS,
		CapturedAt:        time.Now().UTC(),
		Sequence:          seq,
		Deltas:            deltas,
		OrdersProduced:    rec.OrdersProduced,
		OrdersConsumed:    rec.OrdersConsumed,
		OrdersDropped:     rec.OrdersDropped,
		NetworkErrors:     rec.NetworkErrors,
		BatchCount:        rec.BatchCount,
		BufferSize:        rec.BufferSize,
		BufferCapacity:    rec.BufferCapacity,
		BufferUtilization: bufferUtilization(rec.BufferSize, rec.BufferCapacity),
		ThroughputOPS:     rec.ThroughputOPS,
		AvgLatencyNS:      rec.AvgLatencyNS,
		P95LatencyNS:      rec.P95LatencyNS,
		P99LatencyNS:      rec.P99LatencyNS,
	}
}

// observe forwards one record's deltas and gauges to the sink.
func (c *Collector) observe(rec Record, d Deltas) {
	c.sink.IncrementCounter(MetricOrdersProduced, producerLabels, float64(d.OrdersProduced))
	c.sink.IncrementCounter(MetricOrdersConsumed, consumerLabels, float64(d.OrdersConsumed))
	c.sink.IncrementCounter(MetricOrdersDropped, nil, float64(d.OrdersDropped))
	c.sink.IncrementCounter(MetricNetworkErrors, nil, float64(d.NetworkErrors))
	c.sink.IncrementCounter(MetricBatchesSent, nil, float64(d.BatchCount))
	if d.Regressions > 0 {
		c.sink.IncrementCounter(MetricCounterResets, nil, float64(d.Regressions))
	}

	c.sink.SetGauge(MetricThroughput, rec.ThroughputOPS)
	c.sink.SetGauge(MetricBufferUtilization, bufferUtilization(rec.BufferSize, rec.BufferCapacity))
	c.sink.SetGauge(MetricBufferSize, float64(rec.BufferSize))
	c.sink.SetGauge(MetricAvgLatency, rec.AvgLatencyNS)
	c.sink.SetGauge(MetricP95Latency, rec.P95LatencyNS)
	c.sink.SetGauge(MetricP99Latency, rec.P99LatencyNS)

	if rec.AvgLatencyNS > 0 {
		c.sink.ObserveHistogram(MetricBatchLatency, rec.AvgLatencyNS/1e9)
	}
}

func (c *Collector) noteCycle(records, skipped, regressions uint64, published *Snapshot) {
	offset := c.tailer.Offset()
	resets := c.tailer.Resets()

	c.mu.Lock()
	c.lastErr = nil
	c.stats.Cycles++
	c.stats.Records += records
	c.stats.SkippedLines += skipped
	c.stats.Regressions += regressions
	c.stats.CursorOffset = offset
	c.stats.CursorResets = resets
	c.stats.Backoff = 0
	if published != nil {
		c.stats.LastPublish = published.CapturedAt
	}
	c.mu.Unlock()
}

func (c *Collector) noteFailure(err error, backoff time.Duration) {
	c.mu.Lock()
	c.lastErr = err
	c.stats.Backoff = backoff
	c.mu.Unlock()
}

func (c *Collector) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(current time.Duration, s Settings) time.Duration {
	next := time.Duration(float64(current) * s.BackoffMultiplier)
	if next > s.BackoffCap {
		next = s.BackoffCap
	}
	if next < s.BackoffFloor {
		next = s.BackoffFloor
	}
	return next
}
