package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rexwzh/termcap/internal/config"
)

func TestDefaultRecordingPathHonorsOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.DefaultOutputDir = dir
	cfg.Output.AutoTimestamp = false

	path, err := defaultRecordingPath(&cfg)
	if err != nil {
		t.Fatalf("defaultRecordingPath: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want directory %q", path, dir)
	}
	if !strings.HasSuffix(path, ".cast") {
		t.Errorf("path = %q, want .cast suffix", path)
	}
}

func TestDefaultRecordingPathTimestampPrefix(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.DefaultOutputDir = dir
	cfg.Output.AutoTimestamp = true

	path, err := defaultRecordingPath(&cfg)
	if err != nil {
		t.Fatalf("defaultRecordingPath: %v", err)
	}
	name := filepath.Base(path)
	if len(name) < len("20060102-150405-") {
		t.Fatalf("name %q too short to carry a timestamp prefix", name)
	}
	if _, err := time.Parse("20060102-150405", name[:len("20060102-150405")]); err != nil {
		t.Errorf("name %q does not start with a timestamp: %v", name, err)
	}
}
