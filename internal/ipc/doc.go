// Package ipc implements JSON-RPC daemon control over a Unix domain
// socket. The CLI is the only intended client; the socket lives next to
// the daemon's lock file in the log directory.
package ipc
