// Package preflight runs startup environment checks for the daemon: the
// log directory must be writable, the telemetry source readable when it
// already exists, and the API bind address well-formed. Results are
// advisory and logged rather than fatal.
package preflight
