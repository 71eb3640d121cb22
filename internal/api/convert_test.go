package api_test

import (
	"testing"
	"time"

	"tapetail/internal/api"
	"tapetail/internal/telemetry"
)

func TestFromSnapshotCarriesEveryField(t *testing.T) {
	captured := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &telemetry.Snapshot{
		TimestampNS:       2000000000,
		CapturedAt:        captured,
		Sequence:          7,
		Deltas:            telemetry.Deltas{OrdersProduced: 15, OrdersConsumed: 12, BatchCount: 1},
		OrdersProduced:    25,
		OrdersConsumed:    20,
		OrdersDropped:     5,
		NetworkErrors:     1,
		BatchCount:        2,
		BufferSize:        60,
		BufferCapacity:    100,
		BufferUtilization: 60,
		ThroughputOPS:     600,
		AvgLatencyNS:      900,
		P95LatencyNS:      1800,
		P99LatencyNS:      2700,
	}

	got := api.FromSnapshot(src)
	if got.Sequence != 7 || !got.CapturedAt.Equal(captured) {
		t.Fatalf("identity fields lost: %+v", got)
	}
	if got.OrdersProduced != 25 || got.Deltas.OrdersProduced != 15 {
		t.Fatalf("counter fields lost: %+v", got)
	}
	if got.BufferUtilization != 60 || got.P99LatencyNS != 2700 {
		t.Fatalf("gauge fields lost: %+v", got)
	}
}

func TestFromSnapshotNil(t *testing.T) {
	if got := api.FromSnapshot(nil); got.Sequence != 0 {
		t.Fatalf("nil snapshot should convert to zero value, got %+v", got)
	}
}

func TestFromCollectorStatusFormatsBackoff(t *testing.T) {
	got := api.FromCollectorStatus(telemetry.Status{Running: true, Backoff: 4 * time.Second})
	if !got.Running {
		t.Fatal("running flag lost")
	}
	if got.Backoff != "4s" {
		t.Fatalf("backoff = %q, want 4s", got.Backoff)
	}

	idle := api.FromCollectorStatus(telemetry.Status{})
	if idle.Backoff != "" {
		t.Fatalf("zero backoff should be omitted, got %q", idle.Backoff)
	}
}
