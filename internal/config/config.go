// Package config manages the rubikal configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SeamusWaldron/rubikal"
)

const dirName = ".rubikal"

// Config is the persistent application configuration.
type Config struct {
	Whitelist          []string `json:"whitelist,omitempty"`
	Emphasize          bool     `json:"emphasize"`
	UpdatesPerRotation int      `json:"updates_per_rotation"`
	PauseMs            int      `json:"pause_ms"`
	FrameIntervalMs    float64  `json:"frame_interval_ms"`
	DBPath             string   `json:"db_path,omitempty"`
	LogPath            string   `json:"log_path,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Emphasize:          true,
		UpdatesPerRotation: rubikal.DefaultUpdatesPerRotation,
		PauseMs:            int(rubikal.DefaultPause / time.Millisecond),
		FrameIntervalMs:    float64(rubikal.DefaultFrameInterval) / float64(time.Millisecond),
	}
}

// Dir returns ~/.rubikal, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path. A missing file yields Default.
// Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Pause returns the settle pause as a duration.
func (c Config) Pause() time.Duration {
	return time.Duration(c.PauseMs) * time.Millisecond
}

// FrameInterval returns the tick interval as a duration.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs * float64(time.Millisecond))
}

// Options converts the config into cube options. Validation happens in
// rubikal.New.
func (c Config) Options() []rubikal.Option {
	return []rubikal.Option{
		rubikal.WithWhitelist(c.Whitelist...),
		rubikal.WithEmphasis(c.Emphasize),
		rubikal.WithUpdatesPerRotation(c.UpdatesPerRotation),
		rubikal.WithPause(c.Pause()),
		rubikal.WithFrameInterval(c.FrameInterval()),
	}
}

// ResolveDBPath returns the configured database path or the default one.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rubikal.db"), nil
}
