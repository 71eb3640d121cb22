package api

import "time"

// Snapshot is the wire form of one published telemetry aggregate.
type Snapshot struct {
	TimestampNS int64     `json:"timestamp_ns"`
	CapturedAt  time.Time `json:"captured_at"`
	Sequence    uint64    `json:"sequence"`

	OrdersProduced int64 `json:"orders_produced"`
	OrdersConsumed int64 `json:"orders_consumed"`
	OrdersDropped  int64 `json:"orders_dropped"`
	NetworkErrors  int64 `json:"network_errors"`
	BatchCount     int64 `json:"batch_count"`

	Deltas SnapshotDeltas `json:"deltas"`

	BufferSize        int64   `json:"buffer_size"`
	BufferCapacity    int64   `json:"buffer_capacity"`
	BufferUtilization float64 `json:"buffer_utilization_percent"`
	ThroughputOPS     float64 `json:"throughput_ops_per_sec"`
	AvgLatencyNS      float64 `json:"avg_latency_ns"`
	P95LatencyNS      float64 `json:"p95_latency_ns"`
	P99LatencyNS      float64 `json:"p99_latency_ns"`
}

// SnapshotDeltas carries the last interval's change per cumulative field.
type SnapshotDeltas struct {
	OrdersProduced int64 `json:"orders_produced"`
	OrdersConsumed int64 `json:"orders_consumed"`
	OrdersDropped  int64 `json:"orders_dropped"`
	NetworkErrors  int64 `json:"network_errors"`
	BatchCount     int64 `json:"batch_count"`
	Regressions    int   `json:"regressions"`
}

// CollectorStatus is the wire form of the poll loop's counters.
type CollectorStatus struct {
	Running      bool      `json:"running"`
	Cycles       uint64    `json:"cycles"`
	Records      uint64    `json:"records"`
	SkippedLines uint64    `json:"skipped_lines"`
	Regressions  uint64    `json:"regressions"`
	CursorOffset int64     `json:"cursor_offset"`
	CursorResets uint64    `json:"cursor_resets"`
	Backoff      string    `json:"backoff,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	LastPublish  time.Time `json:"last_publish,omitzero"`
}

// DaemonStatus combines process and collector state for the status surfaces.
type DaemonStatus struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	StartedAt    time.Time       `json:"started_at,omitzero"`
	LockFilePath string          `json:"lock_path"`
	TelemetryLog string          `json:"telemetry_log"`
	APIBind      string          `json:"api_bind"`
	HasSnapshot  bool            `json:"has_snapshot"`
	Collector    CollectorStatus `json:"collector"`
}
