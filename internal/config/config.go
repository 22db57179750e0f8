// Package config loads and validates sweeper.yml, the single configuration
// file for boards, benchmarks and the game server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Board presets, matching the classic difficulty tiers.
const (
	PresetBeginner     = "beginner"     // 9x9, 10 mines
	PresetIntermediate = "intermediate" // 16x16, 40 mines
	PresetExpert       = "expert"       // 16x30, 99 mines
)

// SweeperConfig represents the top-level sweeper.yml configuration.
type SweeperConfig struct {
	Version string        `yaml:"version"`
	Board   BoardConfig   `yaml:"board"`
	Server  *ServerConfig `yaml:"server,omitempty"`
}

// BoardConfig selects the board to play: either a named preset or explicit
// dimensions, never both.
type BoardConfig struct {
	Preset string `yaml:"preset,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Mines  int    `yaml:"mines,omitempty"`
}

// ServerConfig holds the game server settings.
type ServerConfig struct {
	Listen     string `yaml:"listen,omitempty"`      // bind address, default ":8080"
	RedisURL   string `yaml:"redis_url,omitempty"`   // default "redis://localhost:6379"
	SessionTTL string `yaml:"session_ttl,omitempty"` // Go duration, default "24h"
}

// Default returns the configuration used when no sweeper.yml exists: a
// beginner board and stock server settings.
func Default() *SweeperConfig {
	return &SweeperConfig{
		Version: "1.0",
		Board:   BoardConfig{Preset: PresetBeginner},
	}
}

// Load reads and validates a sweeper.yml file.
func Load(path string) (*SweeperConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config SweeperConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs strict validation on the configuration.
func (c *SweeperConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}

	if c.Server != nil {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	return nil
}

// Validate checks that the board selection is consistent.
func (b *BoardConfig) Validate() error {
	explicit := b.Height != 0 || b.Width != 0 || b.Mines != 0

	if b.Preset != "" {
		if explicit {
			return fmt.Errorf("preset %q cannot be combined with explicit dimensions", b.Preset)
		}
		switch b.Preset {
		case PresetBeginner, PresetIntermediate, PresetExpert:
			return nil
		default:
			return fmt.Errorf("unknown preset: %s (use %s, %s or %s)",
				b.Preset, PresetBeginner, PresetIntermediate, PresetExpert)
		}
	}

	if !explicit {
		return fmt.Errorf("either preset or height/width/mines must be set")
	}
	if b.Height <= 0 || b.Width <= 0 {
		return fmt.Errorf("dimensions must be positive, got %dx%d", b.Height, b.Width)
	}
	if b.Mines < 0 || b.Mines > b.Height*b.Width {
		return fmt.Errorf("mine count %d outside [0, %d]", b.Mines, b.Height*b.Width)
	}
	return nil
}

// Resolve returns the concrete board dimensions, expanding presets.
func (b *BoardConfig) Resolve() (height, width, mines int) {
	switch b.Preset {
	case PresetBeginner:
		return 9, 9, 10
	case PresetIntermediate:
		return 16, 16, 40
	case PresetExpert:
		return 16, 30, 99
	default:
		return b.Height, b.Width, b.Mines
	}
}

// Validate checks the server settings, including the TTL duration syntax.
func (s *ServerConfig) Validate() error {
	if s.SessionTTL != "" {
		d, err := time.ParseDuration(s.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("session_ttl must be positive, got %s", s.SessionTTL)
		}
	}
	return nil
}

// ListenAddr returns the bind address, defaulting to ":8080".
func (s *ServerConfig) ListenAddr() string {
	if s == nil || s.Listen == "" {
		return ":8080"
	}
	return s.Listen
}

// RedisAddr returns the Redis URL, defaulting to a local instance.
func (s *ServerConfig) RedisAddr() string {
	if s == nil || s.RedisURL == "" {
		return "redis://localhost:6379"
	}
	return s.RedisURL
}

// TTL returns the session lifetime, defaulting to 24 hours. Validate must
// have accepted the config first.
func (s *ServerConfig) TTL() time.Duration {
	if s == nil || s.SessionTTL == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(s.SessionTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
