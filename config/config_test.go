package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/wfunc/gridarena/game"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected loopback host, got %s", cfg.Server.Host)
	}
	if cfg.Game.Capacity != 4 || cfg.Game.Rows != 5 || cfg.Game.Cols != 5 {
		t.Errorf("Unexpected game defaults %+v", cfg.Game)
	}
	if len(cfg.Game.Obstacles) != 1 || cfg.Game.Obstacles[0] != (game.Pos{X: 2, Y: 2}) {
		t.Errorf("Unexpected default obstacles %+v", cfg.Game.Obstacles)
	}
	if len(cfg.Game.Pickups) != 4 {
		t.Errorf("Expected 4 default pickups, got %d", len(cfg.Game.Pickups))
	}
	if cfg.Database.Driver != "none" {
		t.Errorf("Expected database disabled by default, got %s", cfg.Database.Driver)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  host: 0.0.0.0
  http_address: ":9100"
game:
  capacity: 2
  rows: 3
  cols: 4
  obstacles:
    - {x: 1, y: 1}
  pickups: []
  broadcast_interval: 2s
database:
  driver: memory
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.HTTPAddress != ":9100" {
		t.Errorf("Unexpected server section %+v", cfg.Server)
	}
	if cfg.Game.Capacity != 2 || cfg.Game.Rows != 3 || cfg.Game.Cols != 4 {
		t.Errorf("Unexpected game section %+v", cfg.Game)
	}
	if cfg.Game.BroadcastInterval != 2*time.Second {
		t.Errorf("Expected 2s broadcast interval, got %s", cfg.Game.BroadcastInterval)
	}
	if len(cfg.Game.Pickups) != 0 {
		t.Errorf("Expected no pickups, got %+v", cfg.Game.Pickups)
	}
	if cfg.DatabaseOptions().Driver != "memory" {
		t.Errorf("Expected memory driver, got %s", cfg.DatabaseOptions().Driver)
	}
}

func TestLoadConfig_InvalidLayout(t *testing.T) {
	dir := t.TempDir()
	yaml := "game:\n  capacity: 30\n"
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644)

	if _, err := LoadConfig(dir, nil); !errors.Is(err, game.ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout, got %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("GRIDARENA_GAME_CAPACITY", "3")

	cfg, err := LoadConfig(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Game.Capacity != 3 {
		t.Errorf("Expected capacity 3 from env, got %d", cfg.Game.Capacity)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	if err := fs.Parse([]string{"--log-level", "debug", "--http", ":9200", "4000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(t.TempDir(), fs)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Server.HTTPAddress != ":9200" {
		t.Errorf("Flags not applied: log=%s http=%s", cfg.Log.Level, cfg.Server.HTTPAddress)
	}
	if fs.Arg(0) != "4000" {
		t.Errorf("Expected positional port, got %v", fs.Args())
	}
}
