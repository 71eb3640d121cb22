package api

import (
	"tapetail/internal/telemetry"
)

// FromSnapshot converts a published pipeline snapshot to its wire form.
func FromSnapshot(s *telemetry.Snapshot) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		TimestampNS: s.TimestampNS,
		CapturedAt:  s.CapturedAt,
		Sequence:    s.Sequence,

		OrdersProduced: s.OrdersProduced,
		OrdersConsumed: s.OrdersConsumed,
		OrdersDropped:  s.OrdersDropped,
		NetworkErrors:  s.NetworkErrors,
		BatchCount:     s.BatchCount,

		Deltas: SnapshotDeltas{
			OrdersProduced: s.Deltas.OrdersProduced,
			OrdersConsumed: s.Deltas.OrdersConsumed,
			OrdersDropped:  s.Deltas.OrdersDropped,
			NetworkErrors:  s.Deltas.NetworkErrors,
			BatchCount:     s.Deltas.BatchCount,
			Regressions:    s.Deltas.Regressions,
		},

		BufferSize:        s.BufferSize,
		BufferCapacity:    s.BufferCapacity,
		BufferUtilization: s.BufferUtilization,
		ThroughputOPS:     s.ThroughputOPS,
		AvgLatencyNS:      s.AvgLatencyNS,
		P95LatencyNS:      s.P95LatencyNS,
		P99LatencyNS:      s.P99LatencyNS,
	}
}

// FromCollectorStatus converts the poll loop's status copy to its wire form.
func FromCollectorStatus(s telemetry.Status) CollectorStatus {
	status := CollectorStatus{
		Running:      s.Running,
		Cycles:       s.Cycles,
		Records:      s.Records,
		SkippedLines: s.SkippedLines,
		Regressions:  s.Regressions,
		CursorOffset: s.CursorOffset,
		CursorResets: s.CursorResets,
		LastError:    s.LastError,
		LastPublish:  s.LastPublish,
	}
	if s.Backoff > 0 {
		status.Backoff = s.Backoff.String()
	}
	return status
}
