// Package logs reads the daemon's own log file for the IPC LogTail surface
// and `tapetail logs`.
//
// Reads are offset-based so clients can resume where they left off, a
// negative offset means "last N lines", and follow mode waits briefly for
// appended lines. Only complete newline-terminated lines are returned; a
// line still being written stays unread until its terminator arrives, and a
// rotated or truncated file restarts the read from the top. Callers supply
// context deadlines so follow-mode polling shuts down cleanly.
package logs
