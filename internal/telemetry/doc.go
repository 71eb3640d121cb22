// Package telemetry implements the ingestion pipeline that tails the
// producer's telemetry log and turns it into published aggregates.
//
// It owns the read cursor into the append-only log, the parsing of fixed
// schema CSV records, the conversion of cumulative counters into
// per-interval deltas with reset recovery, and the atomic single-slot
// snapshot that request handlers read concurrently. The Collector drives
// the whole cycle on a fixed cadence with capped backoff after failures.
//
// Everything downstream of the pipeline (Prometheus export, HTTP payloads,
// IPC responses) consumes either the Sink contract or the published
// Snapshot; nothing else in the process reads the telemetry log directly.
package telemetry
