package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[source]") {
		t.Fatalf("sample missing source section:\n%s", data)
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestConfigShowHonorsConfigFlag(t *testing.T) {
	target := filepath.Join(t.TempDir(), "custom.toml")
	contents := "[source]\ntelemetry_log = \"/srv/telemetry/orders.csv\"\n"
	if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flag := target
	cmd := newConfigShowCommand(&flag)
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "# Config path: "+target) {
		t.Fatalf("expected the flagged path to be loaded:\n%s", rendered)
	}
	if !strings.Contains(rendered, "/srv/telemetry/orders.csv") {
		t.Fatalf("expected the flagged file's values:\n%s", rendered)
	}
}
