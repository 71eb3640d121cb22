// Package daemon coordinates the long-running tapetail process.
//
// It wires configuration, the telemetry collector, the Prometheus sink,
// and the HTTP/WebSocket surface into a single lifecycle with flock-based
// locking to prevent multiple instances. The daemon itself stays thin:
// tailing, parsing, and aggregation live in the telemetry package, and
// this package focuses on startup, shutdown, and serving the results.
package daemon
