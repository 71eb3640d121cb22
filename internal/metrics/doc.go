// Package metrics exports the telemetry pipeline's measurements as
// Prometheus families.
//
// PrometheusSink implements the telemetry.Sink contract over a private
// registry, so the collector stays ignorant of storage and exposition
// format. The package also instruments the daemon's own HTTP handlers with
// request count and latency families on the same registry.
package metrics
