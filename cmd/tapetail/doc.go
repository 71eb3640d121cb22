// Command tapetail is the CLI for the tapetail daemon: it launches the
// collector, inspects status and snapshots over the IPC socket, streams
// live updates over WebSocket, and writes synthetic telemetry for demos.
package main
