package telemetry

import (
	"sync/atomic"
	"time"
)

// Snapshot is one fully aggregated view of the telemetry stream: the newest
// record's gauges, the lifetime totals it reported, and the deltas the last
// interval contributed. Snapshots are immutable once published; each poll
// cycle that sees data replaces the previous one wholesale.
type Snapshot struct {
	TimestampNS int64
	CapturedAt  time.Time
	Sequence    uint64

	Deltas Deltas

	OrdersProduced int64
	OrdersConsumed int64
	OrdersDropped  int64
	NetworkErrors  int64
	BatchCount     int64

	BufferSize        int64
	BufferCapacity    int64
	BufferUtilization float64
	ThroughputOPS     float64
	AvgLatencyNS      float64
	P95LatencyNS      float64
	P99LatencyNS      float64
}

// Publisher hands the latest snapshot from the single collector goroutine
// to any number of concurrent readers. Readers never block the writer or
// each other, and never observe a partially written snapshot.
type Publisher struct {
	current atomic.Pointer[Snapshot]
}

// Publish replaces the visible snapshot. Only the collector calls this.
func (p *Publisher) Publish(s *Snapshot) {
	p.current.Store(s)
}

// Current returns the most recently published snapshot. ok is false until
// the first publish, which callers surface as an explicit "no data yet"
// state rather than an error.
func (p *Publisher) Current() (*Snapshot, bool) {
	s := p.current.Load()
	if s == nil {
		return nil, false
	}
	return s, true
}

// bufferUtilization reports size as a percentage of capacity, returning 0
// for an unset capacity rather than dividing by zero.
func bufferUtilization(size, capacity int64) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(size) / float64(capacity) * 100
}
