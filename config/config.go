// Package config provides configuration loading for recurcal.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/recurcal/recurrence"
)

const (
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config is the root configuration structure.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig configures occurrence generation.
type EngineConfig struct {
	CapDate        string      `yaml:"cap_date"`        // Ceiling for rules without an end date
	MaxOccurrences int         `yaml:"max_occurrences"` // Including the anchor (default: 10)
	Cache          CacheConfig `yaml:"cache"`
}

// CacheConfig configures the generated date cache.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	TTL             time.Duration `yaml:"ttl"`
	MaxEntries      int           `yaml:"max_entries"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// StorageConfig selects the event store.
type StorageConfig struct {
	Type string `yaml:"type"` // "file" or "memory"
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// DefaultPath returns ~/.config/recurcal/config.yaml (or the platform equivalent).
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(configDir, "recurcal", "config.yaml"), nil
}

// Load reads configuration from the default location. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFrom(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	return &cfg
}

// applyDefaults sets default values for unspecified config options.
func (c *Config) applyDefaults() {
	if c.Engine.CapDate == "" {
		c.Engine.CapDate = recurrence.DefaultCapDate
	}
	if c.Engine.MaxOccurrences == 0 {
		c.Engine.MaxOccurrences = recurrence.DefaultMaxAdditionalOccurrences + 1
	}
	if c.Engine.Cache.TTL == 0 {
		c.Engine.Cache.TTL = recurrence.DefaultCacheConfig.TTL
	}
	if c.Engine.Cache.MaxEntries == 0 {
		c.Engine.Cache.MaxEntries = recurrence.DefaultCacheConfig.MaxEntries
	}
	if c.Engine.Cache.CleanupInterval == 0 {
		c.Engine.Cache.CleanupInterval = recurrence.DefaultCacheConfig.CleanupInterval
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageFile
	}
	if c.Storage.Path == "" && c.Storage.Type == StorageFile {
		c.Storage.Path = "~/.local/share/recurcal/events.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	if c.Engine.MaxOccurrences < 1 {
		return fmt.Errorf("engine.max_occurrences must be at least 1, got %d", c.Engine.MaxOccurrences)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	switch c.Storage.Type {
	case StorageFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for file storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.type %q is not one of %q, %q", c.Storage.Type, StorageFile, StorageMemory)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// EngineConfig converts the engine section into a recurrence engine configuration.
func (c *Config) EngineConfig() recurrence.EngineConfig {
	return recurrence.EngineConfig{
		CacheEnabled: c.Engine.Cache.Enabled,
		CacheConfig: recurrence.CacheConfig{
			TTL:             c.Engine.Cache.TTL,
			MaxEntries:      c.Engine.Cache.MaxEntries,
			CleanupInterval: c.Engine.Cache.CleanupInterval,
		},
		CapDate:                  c.Engine.CapDate,
		MaxAdditionalOccurrences: c.Engine.MaxOccurrences - 1,
	}
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// UnmarshalYAML implements custom unmarshaling for duration fields.
func (c *CacheConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Enabled         bool   `yaml:"enabled"`
		TTL             string `yaml:"ttl"`
		MaxEntries      int    `yaml:"max_entries"`
		CleanupInterval string `yaml:"cleanup_interval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.TTL != "" {
		d, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return fmt.Errorf("parse ttl: %w", err)
		}
		c.TTL = d
	}
	if raw.CleanupInterval != "" {
		d, err := time.ParseDuration(raw.CleanupInterval)
		if err != nil {
			return fmt.Errorf("parse cleanup_interval: %w", err)
		}
		c.CleanupInterval = d
	}
	c.Enabled = raw.Enabled
	c.MaxEntries = raw.MaxEntries
	return nil
}
