package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tapetail/internal/logging"
)

func TestNewConsoleWritesFormattedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	scoped := logging.NewComponentLogger(logger, "collector")
	scoped.Info("poll finished", logging.Int("records", 3), logging.String("state", "ok"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, " INFO collector: poll finished") {
		t.Fatalf("unexpected line shape: %q", line)
	}
	if !strings.Contains(line, "records=3") || !strings.Contains(line, "state=ok") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestNewConsoleFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.log")

	logger, err := logging.New(logging.Options{
		Level:            "warn",
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "quiet") {
		t.Fatalf("info line should be filtered: %q", content)
	}
	if !strings.Contains(content, "loud") {
		t.Fatalf("warn line should be written: %q", content)
	}
}

func TestNewJSONUsesRenamedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("hello", logging.String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &decoded); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if decoded["msg"] != "hello" || decoded["level"] != "info" {
		t.Fatalf("unexpected keys: %#v", decoded)
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatalf("expected ts key: %#v", decoded)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing happens", logging.Error(os.ErrClosed))
}
