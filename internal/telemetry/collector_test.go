package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tapetail/internal/telemetry"
)

type recordingSink struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (s *recordingSink) IncrementCounter(name string, labels map[string]string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += amount
}

func (s *recordingSink) SetGauge(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges[name] = value
}

func (s *recordingSink) ObserveHistogram(name string, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histograms[name] = append(s.histograms[name], seconds)
}

func (s *recordingSink) counter(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

func (s *recordingSink) gauge(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gauges[name]
}

func (s *recordingSink) observations(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.histograms[name])
}

func testSettings() telemetry.Settings {
	return telemetry.Settings{
		PollInterval:      10 * time.Millisecond,
		BackoffFloor:      5 * time.Millisecond,
		BackoffCap:        50 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func waitSnapshot(t *testing.T, ch <-chan *telemetry.Snapshot) *telemetry.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a published snapshot")
		return nil
	}
}

func TestCollectorEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path, "1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1\n")

	sink := newRecordingSink()
	published := make(chan *telemetry.Snapshot, 8)
	collector := telemetry.NewCollector(path, sink, nil, testSettings(),
		telemetry.WithPublishHook(func(s *telemetry.Snapshot) { published <- s }))

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer collector.Stop()

	first := waitSnapshot(t, published)
	if first.OrdersProduced != 10 || first.Deltas.OrdersProduced != 10 {
		t.Fatalf("unexpected first snapshot: %+v", first)
	}
	if first.BufferUtilization != 50 {
		t.Fatalf("unexpected buffer utilization: %v", first.BufferUtilization)
	}

	appendLines(t, path, "2000000000,25,20,5,60,100,600.0,900.0,1800.0,2700.0,1,2\n3000000000,bad\n")

	second := waitSnapshot(t, published)
	if second.Deltas.OrdersProduced != 15 || second.Deltas.OrdersConsumed != 12 || second.Deltas.BatchCount != 1 {
		t.Fatalf("unexpected second deltas: %+v", second.Deltas)
	}
	if second.Deltas.OrdersDropped != 3 || second.Deltas.NetworkErrors != 1 {
		t.Fatalf("unexpected second deltas: %+v", second.Deltas)
	}
	if second.BufferUtilization != 60 {
		t.Fatalf("unexpected buffer utilization: %v", second.BufferUtilization)
	}
	if second.TimestampNS != 2000000000 {
		t.Fatalf("snapshot should derive from the newest record: %+v", second)
	}

	if got := sink.counter(telemetry.MetricOrdersProduced); got != 25 {
		t.Fatalf("produced counter should equal the running total, got %v", got)
	}
	if got := sink.counter(telemetry.MetricOrdersConsumed); got != 20 {
		t.Fatalf("consumed counter should equal the running total, got %v", got)
	}
	if got := sink.counter(telemetry.MetricBatchesSent); got != 2 {
		t.Fatalf("batch counter should equal the running total, got %v", got)
	}
	if got := sink.counter(telemetry.MetricLinesSkipped); got != 1 {
		t.Fatalf("expected exactly one skipped line, got %v", got)
	}
	if got := sink.gauge(telemetry.MetricThroughput); got != 600 {
		t.Fatalf("throughput gauge should track the newest record, got %v", got)
	}
	if got := sink.observations(telemetry.MetricBatchLatency); got != 2 {
		t.Fatalf("expected one latency observation per record, got %d", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		status := collector.Status()
		if status.Records == 2 && status.SkippedLines == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never settled: %+v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorBatchedCatchUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path,
		"1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1\n"+
			"2000000000,25,20,5,60,100,600.0,900.0,1800.0,2700.0,1,2\n"+
			"3000000000,40,33,6,70,100,700.0,800.0,1600.0,2400.0,1,3\n")

	sink := newRecordingSink()
	published := make(chan *telemetry.Snapshot, 8)
	collector := telemetry.NewCollector(path, sink, nil, testSettings(),
		telemetry.WithPublishHook(func(s *telemetry.Snapshot) { published <- s }))

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer collector.Stop()

	snap := waitSnapshot(t, published)
	if snap.Sequence != 1 {
		t.Fatalf("all backlog lines should land in one cycle, got sequence %d", snap.Sequence)
	}
	if snap.TimestampNS != 3000000000 || snap.OrdersProduced != 40 {
		t.Fatalf("snapshot should reflect the newest record: %+v", snap)
	}
	if snap.Deltas.OrdersProduced != 15 {
		t.Fatalf("snapshot deltas should cover only the last interval: %+v", snap.Deltas)
	}

	// Every intervening delta still reaches the counters.
	if got := sink.counter(telemetry.MetricOrdersProduced); got != 40 {
		t.Fatalf("produced counter should sum all deltas, got %v", got)
	}
	if got := sink.counter(telemetry.MetricBatchesSent); got != 3 {
		t.Fatalf("batch counter should sum all deltas, got %v", got)
	}
}

func TestCollectorRecoversFromTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path, "1000000000,100,90,5,50,100,500.0,1000.0,2000.0,3000.0,2,10\n")

	sink := newRecordingSink()
	published := make(chan *telemetry.Snapshot, 8)
	collector := telemetry.NewCollector(path, sink, nil, testSettings(),
		telemetry.WithPublishHook(func(s *telemetry.Snapshot) { published <- s }))

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer collector.Stop()

	waitSnapshot(t, published)

	// Producer restarted: the replacement file carries lower counters.
	if err := os.WriteFile(path, []byte("4000000000,5,4,0,10,100,100.0,500.0,900.0,1200.0,0,1\n"), 0o644); err != nil {
		t.Fatalf("replace file: %v", err)
	}

	snap := waitSnapshot(t, published)
	if snap.TimestampNS != 4000000000 {
		t.Fatalf("expected the fresh record after reset: %+v", snap)
	}
	if snap.Deltas.OrdersProduced != 0 || snap.Deltas.Regressions == 0 {
		t.Fatalf("regressed counters must report zero deltas: %+v", snap.Deltas)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if collector.Status().CursorResets == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("cursor reset never recorded: %+v", collector.Status())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorKeepsRunningThroughReadFailures(t *testing.T) {
	// A directory at the source path makes every read fail.
	dir := t.TempDir()

	sink := newRecordingSink()
	collector := telemetry.NewCollector(dir, sink, nil, testSettings())

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer collector.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		status := collector.Status()
		if status.LastError != "" && status.Backoff > 5*time.Millisecond {
			if !status.Running {
				t.Fatal("collector must keep running through failures")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("failure was never recorded: %+v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorClearsLastErrorAfterRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	// A directory at the source path makes reads fail until it is replaced.
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sink := newRecordingSink()
	published := make(chan *telemetry.Snapshot, 8)
	collector := telemetry.NewCollector(path, sink, nil, testSettings(),
		telemetry.WithPublishHook(func(s *telemetry.Snapshot) { published <- s }))

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer collector.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for collector.Status().LastError == "" {
		if time.Now().After(deadline) {
			t.Fatalf("failure was never recorded: %+v", collector.Status())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	appendLines(t, path, "1000000000,10,8,2,50,100,500.0,1000.0,2000.0,3000.0,0,1\n")

	waitSnapshot(t, published)

	deadline = time.Now().Add(2 * time.Second)
	for {
		status := collector.Status()
		if status.LastError == "" && status.Backoff == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("stale failure survived recovery: %+v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorStopWaitsForCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	sink := newRecordingSink()
	collector := telemetry.NewCollector(path, sink, nil, testSettings())

	if err := collector.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := collector.Start(context.Background()); err == nil {
		t.Fatal("second start should fail while running")
	}

	collector.Stop()
	if collector.Status().Running {
		t.Fatal("collector should report stopped")
	}

	// Stop is idempotent.
	collector.Stop()

	if _, ok := collector.Snapshot(); ok {
		t.Fatal("no snapshot should exist for an empty source")
	}
}
