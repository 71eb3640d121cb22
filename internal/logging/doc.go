// Package logging assembles the structured slog loggers used across the
// tapetail daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes typed attribute helpers plus the standardized field
// keys that keep log lines queryable. It also carries the retention sweep
// for per-run daemon log files and a no-op logger for tests and wiring code
// that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
