package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// followPollInterval is how often follow mode re-checks the daemon log for
// appended lines while waiting.
const followPollInterval = 200 * time.Millisecond

// Request describes one read against the daemon log. A negative Offset asks
// for the last Limit complete lines of the file; a non-negative Offset
// resumes a previous read from that byte position. When Follow is set and no
// lines are immediately available, the read waits up to Wait for new ones.
type Request struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// Result carries the lines read plus the offset a follow-up Request should
// resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// Tail reads daemon log lines according to req. Only complete
// newline-terminated lines are returned; a trailing line still being written
// stays unread and the returned offset points at its start, so the next call
// picks it up whole. A missing file is not an error: the daemon may not have
// logged anything yet.
func Tail(ctx context.Context, path string, req Request) (Result, error) {
	if req.Wait < 0 {
		req.Wait = 0
	}

	var (
		res Result
		err error
	)
	if req.Offset < 0 {
		res, err = tailEnd(path, req.Limit)
	} else {
		res, err = readSince(path, req.Offset)
	}
	if err != nil {
		return res, err
	}

	if req.Follow && req.Wait > 0 && len(res.Lines) == 0 {
		return awaitLines(ctx, path, res.Offset, req.Wait)
	}
	return res, nil
}

// tailEnd returns the last limit complete lines of the file and the offset
// just past them. A non-positive limit skips straight to the end.
func tailEnd(path string, limit int) (Result, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Result{}, err
	}
	defer file.Close()

	keep := limit
	if keep <= 0 {
		// Only the end offset is wanted; retain a single line so the scan
		// stays bounded.
		keep = 1
	}
	lines, offset, err := scanComplete(file, 0, keep)
	if err != nil {
		return Result{}, err
	}
	if limit <= 0 {
		lines = nil
	}
	return Result{Lines: lines, Offset: offset}, nil
}

// readSince returns every complete line appended at or after offset. When
// the file shrank below the offset it was rotated or truncated, so reading
// restarts from the top.
func readSince(path string, offset int64) (Result, error) {
	file, err := openLog(path)
	if err != nil {
		return Result{Offset: offset}, err
	}
	if file == nil {
		return Result{}, nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Result{Offset: offset}, fmt.Errorf("stat daemon log: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}

	lines, newOffset, err := scanComplete(file, offset, 0)
	if err != nil {
		return Result{Offset: offset}, err
	}
	return Result{Lines: lines, Offset: newOffset}, nil
}

// openLog opens the daemon log for reading. A missing file yields a nil
// handle and no error.
func openLog(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open daemon log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat daemon log: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("daemon log %q is a directory", path)
	}
	return file, nil
}

// scanComplete reads complete newline-terminated lines starting at start and
// reports the offset just past the last one, leaving any partial trailing
// line unconsumed. A positive keep retains only the most recent keep lines,
// so tailing the end of a large file stays bounded.
func scanComplete(file *os.File, start int64, keep int) ([]string, int64, error) {
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, start, fmt.Errorf("seek daemon log: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	offset := start
	var lines []string
	for {
		chunk, err := reader.ReadString('\n')
		if err == nil {
			offset += int64(len(chunk))
			if keep > 0 && len(lines) == keep {
				copy(lines, lines[1:])
				lines = lines[:keep-1]
			}
			lines = append(lines, strings.TrimRight(chunk, "\r\n"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return lines, offset, nil
		}
		return nil, offset, fmt.Errorf("read daemon log: %w", err)
	}
}

// awaitLines polls for appended lines until some arrive, wait elapses, or
// the context is canceled.
func awaitLines(ctx context.Context, path string, offset int64, wait time.Duration) (Result, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		res, err := readSince(path, offset)
		if err != nil || len(res.Lines) > 0 {
			return res, err
		}
		if !time.Now().Before(deadline) {
			return res, nil
		}
		offset = res.Offset

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}
