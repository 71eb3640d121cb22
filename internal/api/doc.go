// Package api defines the JSON payload types shared by the daemon's HTTP
// surface, the IPC service, and the CLI renderers, plus the conversions
// from internal pipeline types.
//
// Keeping the wire shapes in one package means the HTTP route layer, the
// WebSocket stream, and the IPC responses cannot drift apart.
package api
