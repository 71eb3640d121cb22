package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"tapetail/internal/telemetry"
)

func appendLines(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReadNewMissingFile(t *testing.T) {
	tailer := telemetry.NewTailer(filepath.Join(t.TempDir(), "telemetry.log"))

	lines, err := tailer.ReadNew()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %#v", lines)
	}
}

func TestReadNewReturnsOnlyNewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path, "one\ntwo\n")
	tailer := telemetry.NewTailer(path)

	lines, err := tailer.ReadNew()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("unexpected lines: %#v", lines)
	}

	lines, err = tailer.ReadNew()
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("no new data should yield no lines, got %#v", lines)
	}

	appendLines(t, path, "three\n")
	lines, err = tailer.ReadNew()
	if err != nil {
		t.Fatalf("third read: %v", err)
	}
	if len(lines) != 1 || lines[0] != "three" {
		t.Fatalf("unexpected lines after append: %#v", lines)
	}
}

func TestReadNewLeavesPartialLineUnconsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path, "complete\npart")
	tailer := telemetry.NewTailer(path)

	lines, err := tailer.ReadNew()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 1 || lines[0] != "complete" {
		t.Fatalf("partial line must not be consumed: %#v", lines)
	}

	appendLines(t, path, "ial\n")
	lines, err = tailer.ReadNew()
	if err != nil {
		t.Fatalf("read after completion: %v", err)
	}
	if len(lines) != 1 || lines[0] != "partial" {
		t.Fatalf("completed line should arrive whole: %#v", lines)
	}
}

func TestReadNewResetsCursorAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	appendLines(t, path, "old-one\nold-two\n")
	tailer := telemetry.NewTailer(path)

	if _, err := tailer.ReadNew(); err != nil {
		t.Fatalf("initial read: %v", err)
	}

	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	lines, err := tailer.ReadNew()
	if err != nil {
		t.Fatalf("read after truncation: %v", err)
	}
	if len(lines) != 1 || lines[0] != "fresh" {
		t.Fatalf("expected fresh line after reset, got %#v", lines)
	}
	if tailer.Resets() != 1 {
		t.Fatalf("expected one cursor reset, got %d", tailer.Resets())
	}
}

func TestReadNewAdvancesOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.log")
	content := "abc\ndef\n"
	appendLines(t, path, content)
	tailer := telemetry.NewTailer(path)

	if _, err := tailer.ReadNew(); err != nil {
		t.Fatalf("read: %v", err)
	}
	if tailer.Offset() != int64(len(content)) {
		t.Fatalf("offset should sit at end of consumed data: %d", tailer.Offset())
	}
}
