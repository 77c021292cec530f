// Package config loads the game settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gridsnake/game/types"
	"gridsnake/store"
)

var ErrInvalid = errors.New("invalid config")

const (
	FrontendDesktop  = "desktop"
	FrontendTerminal = "terminal"
	FrontendWeb      = "web"
)

type Config struct {
	GridSize int         `yaml:"grid_size"`
	Speed    types.Speed `yaml:"speed"`
	// Seed fixes food placement; 0 picks a random seed at startup.
	Seed     uint64      `yaml:"seed"`
	Frontend string      `yaml:"frontend"`
	Store    StoreConfig `yaml:"store"`
	Audio    AudioConfig `yaml:"audio"`
	Web      WebConfig   `yaml:"web"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Muted   bool    `yaml:"muted"`
	Volume  float64 `yaml:"volume"`
}

type WebConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

func Defaults() Config {
	return Config{
		GridSize: types.DefaultGridSize,
		Speed:    types.DefaultSpeed,
		Frontend: FrontendDesktop,
		Store: StoreConfig{
			Driver: store.DriverFile,
			Path:   "data/highscore.txt",
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.8,
		},
		Web: WebConfig{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Normalize lower-cases enumerated fields.
func (c *Config) Normalize() {
	c.Frontend = strings.ToLower(strings.TrimSpace(c.Frontend))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
}

func (c Config) Validate() error {
	if c.GridSize < types.MinGridSize || c.GridSize > types.MaxGridSize {
		return fmt.Errorf("%w: grid_size %d outside [%d, %d]", ErrInvalid, c.GridSize, types.MinGridSize, types.MaxGridSize)
	}
	if !c.Speed.Valid() {
		return fmt.Errorf("%w: speed %d", ErrInvalid, int(c.Speed))
	}
	switch c.Frontend {
	case FrontendDesktop, FrontendTerminal, FrontendWeb:
	default:
		return fmt.Errorf("%w: frontend %q", ErrInvalid, c.Frontend)
	}
	switch c.Store.Driver {
	case store.DriverMemory, "":
	case store.DriverFile, store.DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("%w: store.path required for driver %q", ErrInvalid, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: store.driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %v outside [0, 1]", ErrInvalid, c.Audio.Volume)
	}
	if c.Frontend == FrontendWeb && strings.TrimSpace(c.Web.Addr) == "" {
		return fmt.Errorf("%w: web.addr required", ErrInvalid)
	}
	return nil
}
