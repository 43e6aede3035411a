package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.log")
	prev := Log
	defer func() { Log = prev }()

	if err := Init(Options{Level: "info", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Log.Infof("player %d joined", 2)
	Log.Debugf("hidden below info")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "player 2 joined") {
		t.Errorf("Expected log line in file, got %q", data)
	}
	if strings.Contains(string(data), "hidden below info") {
		t.Error("Debug entry should be filtered at info level")
	}
}

func TestInit_BadLevel(t *testing.T) {
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
