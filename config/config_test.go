package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gridsnake/game/types"
	"gridsnake/store"
)

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("../configs/gridsnake.yaml")
	if err != nil {
		t.Fatalf("load gridsnake.yaml: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("shipped config drifted from defaults:\n got %+v\nwant %+v", cfg, Defaults())
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("  ")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Defaults() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	yaml := "grid_size: 12\nspeed: Turbo\nfrontend: WEB\nstore:\n  driver: sqlite\n  path: scores.db\naudio:\n  muted: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GridSize != 12 || cfg.Speed != types.SpeedTurbo || cfg.Frontend != FrontendWeb {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Store.Driver != store.DriverSQLite || cfg.Store.Path != "scores.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Audio.Muted || !cfg.Audio.Enabled || cfg.Audio.Volume != 0.8 {
		t.Errorf("audio = %+v, want defaults kept with muted set", cfg.Audio)
	}
	if cfg.Web.Addr != ":8080" {
		t.Errorf("web addr = %q, want default", cfg.Web.Addr)
	}
}

func TestLoadRejectsUnknownSpeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	if err := os.WriteFile(path, []byte("speed: ludicrous\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, types.ErrUnknownSpeed) {
		t.Errorf("Load = %v, want ErrUnknownSpeed", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"memory store without path", func(c *Config) { c.Store = StoreConfig{Driver: store.DriverMemory} }, true},
		{"grid too small", func(c *Config) { c.GridSize = 1 }, false},
		{"grid too large", func(c *Config) { c.GridSize = types.MaxGridSize + 1 }, false},
		{"bad speed", func(c *Config) { c.Speed = types.Speed(9) }, false},
		{"bad frontend", func(c *Config) { c.Frontend = "vr" }, false},
		{"bad driver", func(c *Config) { c.Store.Driver = "redis" }, false},
		{"file without path", func(c *Config) { c.Store.Path = "" }, false},
		{"volume above one", func(c *Config) { c.Audio.Volume = 1.5 }, false},
		{"web without addr", func(c *Config) { c.Frontend = FrontendWeb; c.Web.Addr = "" }, false},
	}
	for _, tt := range tests {
		cfg := Defaults()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: error %v, want ErrInvalid", tt.name, err)
		}
	}
}
