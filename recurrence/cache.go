package recurrence

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"
)

// CacheEntry represents a cached generation result
type CacheEntry struct {
	Dates      []string
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// RecurrenceCache memoizes generated date lists keyed by rule and anchor
type RecurrenceCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// CacheConfig holds configuration for the recurrence cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for recurrence caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewRecurrenceCache creates a new recurrence cache with the given configuration
func NewRecurrenceCache(config CacheConfig) *RecurrenceCache {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	cache := &RecurrenceCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// generateCacheKey hashes every input that can change the generated list.
// The group id does not affect dates and is left out.
func generateCacheKey(rule Rule, anchor string, capDate string, limit int) string {
	hasher := sha256.New()

	hasher.Write([]byte(rule.Unit))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strconv.Itoa(rule.Interval)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(rule.EndDate))
	hasher.Write([]byte{0})
	for _, d := range rule.ExcludeDates {
		hasher.Write([]byte(d))
		hasher.Write([]byte{','})
	}
	hasher.Write([]byte{0})
	for _, wd := range rule.Weekdays {
		hasher.Write([]byte(strconv.Itoa(wd)))
		hasher.Write([]byte{','})
	}
	hasher.Write([]byte{0})
	hasher.Write([]byte(anchor))
	hasher.Write([]byte{0})
	hasher.Write([]byte(capDate))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strconv.Itoa(limit)))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a copy of a cached result if it exists and hasn't expired
func (c *RecurrenceCache) Get(key string) ([]string, bool) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.AccessedAt = now
	dates := slices.Clone(entry.Dates)
	c.mutex.Unlock()

	return dates, true
}

// Set stores a copy of dates in the cache
func (c *RecurrenceCache) Set(key string, dates []string) {
	now := time.Now()

	entry := &CacheEntry{
		Dates:      slices.Clone(dates),
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries and oldest entries if over limit.
// Callers must hold the write lock.
func (c *RecurrenceCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}

	keyAccessList := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		keyAccessList = append(keyAccessList, keyAccess{key: key, accessedAt: entry.AccessedAt})
	}

	// Oldest first
	slices.SortFunc(keyAccessList, func(a, b keyAccess) int {
		return a.accessedAt.Compare(b.accessedAt)
	})

	entriesToRemove := len(c.entries) - c.maxEntries
	for i := 0; i < entriesToRemove && i < len(keyAccessList); i++ {
		delete(c.entries, keyAccessList[i].key)
	}
}

// cleanupLoop runs periodic cleanup
func (c *RecurrenceCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache. It is safe to call more than once.
func (c *RecurrenceCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *RecurrenceCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
