package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loom.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolveDefaultsWithoutFile(t *testing.T) {
	resolved, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if resolved.FrameBudget != 16*time.Millisecond {
		t.Errorf("FrameBudget = %s, want 16ms", resolved.FrameBudget)
	}
	if resolved.BuildWorkers != 1 {
		t.Errorf("BuildWorkers = %d, want 1", resolved.BuildWorkers)
	}
	if resolved.LogLevel != zerolog.InfoLevel {
		t.Errorf("LogLevel = %s, want info", resolved.LogLevel)
	}
	if resolved.Verbose {
		t.Error("Verbose defaulted to true")
	}
}

func TestResolveReadsAllFields(t *testing.T) {
	dir := writeConfig(t, `
pipeline:
  frame_budget: 8ms
  build_workers: 4
log:
  level: debug
  verbose: true
`)
	resolved, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.FrameBudget != 8*time.Millisecond {
		t.Errorf("FrameBudget = %s", resolved.FrameBudget)
	}
	if resolved.BuildWorkers != 4 {
		t.Errorf("BuildWorkers = %d", resolved.BuildWorkers)
	}
	if resolved.LogLevel != zerolog.DebugLevel {
		t.Errorf("LogLevel = %s", resolved.LogLevel)
	}
	if !resolved.Verbose {
		t.Error("Verbose not set")
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed budget", "pipeline:\n  frame_budget: fast\n", "frame_budget"},
		{"non-positive budget", "pipeline:\n  frame_budget: -1ms\n", "positive"},
		{"negative workers", "pipeline:\n  build_workers: -2\n", "build_workers"},
		{"unknown level", "log:\n  level: chatty\n", "log.level"},
		{"broken yaml", "pipeline: [\n", "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfig(t, tc.yaml)
			if _, err := Resolve(dir); err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Resolve error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != (Config{}) {
		t.Errorf("missing file produced non-empty config: %+v", cfg)
	}
}
