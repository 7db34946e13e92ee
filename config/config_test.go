package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/recurcal/recurrence"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, recurrence.DefaultCapDate, cfg.Engine.CapDate)
	assert.Equal(t, 10, cfg.Engine.MaxOccurrences)
	assert.False(t, cfg.Engine.Cache.Enabled)
	assert.Equal(t, StorageFile, cfg.Storage.Type)
	assert.Equal(t, "events.json", filepath.Base(cfg.Storage.Path))
	assert.Equal(t, "info", cfg.Log.Level)

	ec := cfg.EngineConfig()
	assert.Equal(t, recurrence.DefaultMaxAdditionalOccurrences, ec.MaxAdditionalOccurrences)
	assert.Equal(t, recurrence.DefaultCacheConfig, ec.CacheConfig)
}

func TestParse_Full(t *testing.T) {
	data := `
engine:
  cap_date: "2026-12-31"
  max_occurrences: 25
  cache:
    enabled: true
    ttl: 1h
    max_entries: 50
    cleanup_interval: 90s
storage:
  type: memory
log:
  level: debug
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	ec := cfg.EngineConfig()
	assert.Equal(t, "2026-12-31", ec.CapDate)
	assert.Equal(t, 24, ec.MaxAdditionalOccurrences)
	assert.True(t, ec.CacheEnabled)
	assert.Equal(t, time.Hour, ec.CacheConfig.TTL)
	assert.Equal(t, 50, ec.CacheConfig.MaxEntries)
	assert.Equal(t, 90*time.Second, ec.CacheConfig.CleanupInterval)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Empty(t, cfg.Storage.Path)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad cap date", "engine:\n  cap_date: 2025-02-30\n"},
		{"negative max", "engine:\n  max_occurrences: -3\n"},
		{"bad duration", "engine:\n  cache:\n    ttl: soon\n"},
		{"unknown storage", "storage:\n  type: s3\n"},
		{"unknown level", "log:\n  level: chatty\n"},
		{"not yaml", "engine: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  path: /tmp/recurcal/events.json\n"), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recurcal/events.json", cfg.Storage.Path)

	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "cal", "events.json"), expandPath("~/cal/events.json"))
	assert.Equal(t, "/abs/events.json", expandPath("/abs/events.json"))
}
