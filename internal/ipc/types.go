package ipc

import "tapetail/internal/api"

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse carries the daemon and collector state.
type StatusResponse struct {
	Status api.DaemonStatus `json:"status"`
}

// LatestRequest asks for the most recent telemetry snapshot.
type LatestRequest struct{}

// LatestResponse carries the latest snapshot. HasSnapshot is false before
// the collector has published anything.
type LatestResponse struct {
	HasSnapshot bool         `json:"has_snapshot"`
	Snapshot    api.Snapshot `json:"snapshot"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse acknowledges a shutdown request.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// LogTailRequest fetches daemon log lines starting at Offset. With Follow
// set the call blocks up to WaitMillis for new lines past end of file.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int64 `json:"wait_millis"`
}

// LogTailResponse returns log lines plus the next read offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
