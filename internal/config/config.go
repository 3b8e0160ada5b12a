package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game      GameConfig      `toml:"game"`
	Save      SaveConfig      `toml:"save"`
	Lifecycle LifecycleConfig `toml:"lifecycle"`
	Archive   ArchiveConfig   `toml:"archive"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
}

type GameConfig struct {
	TickRate       time.Duration `toml:"tick_rate"`
	TimeMultiplier float64       `toml:"time_multiplier"` // simulated seconds per real second
	Seed           int64         `toml:"seed"`            // 0 = seed from the clock
}

type SaveConfig struct {
	Dir              string        `toml:"dir"`
	AutosaveInterval time.Duration `toml:"autosave_interval"`
}

type LifecycleConfig struct {
	Table   string `toml:"table"`   // YAML path; empty = built-in table
	Scripts string `toml:"scripts"` // Lua directory; empty = no hooks
}

type ArchiveConfig struct {
	Path string `toml:"path"` // sqlite file; empty disables the archive
}

type MetricsConfig struct {
	BindAddress string `toml:"bind_address"` // empty disables /metrics
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults when allowMissing is set.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Game.TickRate <= 0:
		return fmt.Errorf("game.tick_rate must be positive")
	case c.Game.TimeMultiplier <= 0:
		return fmt.Errorf("game.time_multiplier must be positive")
	case c.Save.AutosaveInterval <= 0:
		return fmt.Errorf("save.autosave_interval must be positive")
	case c.Save.Dir == "":
		return fmt.Errorf("save.dir is required")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:       200 * time.Millisecond,
			TimeMultiplier: 1.0,
		},
		Save: SaveConfig{
			Dir:              "data",
			AutosaveInterval: time.Second,
		},
		Archive: ArchiveConfig{
			Path: "data/lineage.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
