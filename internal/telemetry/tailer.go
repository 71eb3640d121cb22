package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tailer keeps a byte cursor into the append-only telemetry log and hands
// back newly appended complete lines on each call. It is driven by a single
// goroutine and is not safe for concurrent use.
type Tailer struct {
	path   string
	offset int64
	resets uint64
}

// NewTailer returns a tailer positioned at the start of path. The file does
// not need to exist yet.
func NewTailer(path string) *Tailer {
	return &Tailer{path: path}
}

// ReadNew returns every complete line appended since the previous call, in
// file order, and advances the cursor past them. A missing file means the
// producer has not started yet: no lines, no error. When the file shrank
// below the cursor it was truncated or replaced, so the cursor resets to
// zero and reading restarts from the top. A trailing line without a
// terminator stays unconsumed and is returned whole once a later call sees
// it completed. The call never waits for data to arrive.
func (t *Tailer) ReadNew() ([]string, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat telemetry log: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("telemetry log %q is a directory", t.path)
	}

	if size := info.Size(); size < t.offset {
		t.offset = 0
		t.resets++
	} else if size == t.offset {
		return nil, nil
	}

	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open telemetry log: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek telemetry log: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	consumed := t.offset
	for {
		chunk, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(chunk))
			lines = append(lines, strings.TrimRight(chunk, "\r\n"))
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		return nil, fmt.Errorf("read telemetry log: %w", err)
	}

	t.offset = consumed
	return lines, nil
}

// Offset reports the current cursor position.
func (t *Tailer) Offset() int64 {
	return t.offset
}

// Resets reports how many times the cursor was reset after truncation.
func (t *Tailer) Resets() uint64 {
	return t.resets
}
