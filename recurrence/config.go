package recurrence

import (
	"fmt"
)

// DefaultCapDate is the ceiling applied to rules without an end date.
// It is a fixed calendar date rather than a window relative to today.
const DefaultCapDate = "2025-10-30"

// DefaultMaxAdditionalOccurrences bounds open-ended rules to ten occurrences
// including the anchor.
const DefaultMaxAdditionalOccurrences = 9

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig

	// Open-ended generation bounds
	CapDate                  string // YYYY-MM-DD ceiling used when a rule has no end date
	MaxAdditionalOccurrences int    // Iterations past the anchor when a rule has no end date

	// IDGenerator mints instance and group ids. Nil selects random UUIDs.
	IDGenerator func() string
}

// DefaultEngineConfig generates without caching
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:             false,
	CapDate:                  DefaultCapDate,
	MaxAdditionalOccurrences: DefaultMaxAdditionalOccurrences,
}

// CachedEngineConfig memoizes generated date lists, for callers that
// regenerate the same series repeatedly (list views, exports)
var CachedEngineConfig = EngineConfig{
	CacheEnabled:             true,
	CacheConfig:              DefaultCacheConfig,
	CapDate:                  DefaultCapDate,
	MaxAdditionalOccurrences: DefaultMaxAdditionalOccurrences,
}

// Validate checks that the configuration can drive an engine
func (c EngineConfig) Validate() error {
	if c.CapDate != "" && !IsValidDateString(c.CapDate) {
		return fmt.Errorf("cap date %q: %w", c.CapDate, ErrInvalidDate)
	}
	if c.MaxAdditionalOccurrences < 0 {
		return fmt.Errorf("max additional occurrences must not be negative, got %d", c.MaxAdditionalOccurrences)
	}
	if c.CacheEnabled {
		if c.CacheConfig.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive, got %s", c.CacheConfig.TTL)
		}
		if c.CacheConfig.MaxEntries <= 0 {
			return fmt.Errorf("cache max entries must be positive, got %d", c.CacheConfig.MaxEntries)
		}
		if c.CacheConfig.CleanupInterval <= 0 {
			return fmt.Errorf("cache cleanup interval must be positive, got %s", c.CacheConfig.CleanupInterval)
		}
	}
	return nil
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration.
// An unparsable cap date falls back to DefaultCapDate; call Validate first to
// reject it instead.
func NewEngineWithConfig(config EngineConfig) *Engine {
	capDate, err := ParseDate(config.CapDate)
	if err != nil {
		capDate, _ = ParseDate(DefaultCapDate)
		config.CapDate = DefaultCapDate
	}
	if config.MaxAdditionalOccurrences < 0 {
		config.MaxAdditionalOccurrences = DefaultMaxAdditionalOccurrences
	}

	var cache *RecurrenceCache
	if config.CacheEnabled {
		cache = NewRecurrenceCache(config.CacheConfig)
	}

	newID := config.IDGenerator
	if newID == nil {
		newID = newUUID
	}

	return &Engine{
		cache:   cache,
		config:  config,
		capDate: capDate,
		newID:   newID,
	}
}
