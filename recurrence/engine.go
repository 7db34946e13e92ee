package recurrence

import (
	"fmt"
	"math"
	"time"
)

// Engine expands recurrence rules into occurrence dates and event instances.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cache   *RecurrenceCache
	config  EngineConfig
	capDate time.Time
	newID   func() string
}

// NewEngine creates a new recurrence engine instance with DefaultEngineConfig
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Close releases the cache goroutine, if any
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports cache usage; zero when caching is disabled
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Generate returns the ordered occurrence dates of rule starting at anchor.
//
// The anchor is always the first element. Rules with an end date run until a
// candidate passes it; open-ended rules stop at the configured cap date or
// after MaxAdditionalOccurrences iterations, whichever comes first. Excluded
// dates consume an iteration without being emitted.
func (e *Engine) Generate(rule Rule, anchor string) ([]string, error) {
	if !rule.IsRepeating() {
		return []string{anchor}, nil
	}
	if rule.Interval < MinInterval || rule.Interval > MaxInterval {
		return nil, fmt.Errorf("%w: interval %d outside [%d,%d]", ErrInvalidRule, rule.Interval, MinInterval, MaxInterval)
	}

	start, err := ParseDate(anchor)
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}

	bound, limit, err := e.boundary(rule)
	if err != nil {
		return nil, err
	}

	step, err := newStepper(rule, start)
	if err != nil {
		return nil, err
	}

	var key string
	if e.cache != nil {
		key = generateCacheKey(rule, anchor, e.config.CapDate, limit)
		if dates, ok := e.cache.Get(key); ok {
			return dates, nil
		}
	}

	dates := collect(step, start, bound, limit, excludeSet(rule.ExcludeDates))

	if e.cache != nil {
		e.cache.Set(key, dates)
	}
	return dates, nil
}

// boundary resolves the inclusive ceiling and iteration budget for rule
func (e *Engine) boundary(rule Rule) (time.Time, int, error) {
	if rule.EndDate == "" {
		return e.capDate, e.config.MaxAdditionalOccurrences, nil
	}
	end, err := ParseDate(rule.EndDate)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("end date: %w", err)
	}
	return end, math.MaxInt, nil
}

func collect(step stepper, start, bound time.Time, limit int, excluded map[string]struct{}) []string {
	dates := []string{FormatDate(start)}
	current := start
	for i := 0; i < limit; i++ {
		next, ok := step.next(i, current, bound)
		if !ok {
			continue
		}
		if next.After(bound) {
			break
		}
		current = next
		iso := FormatDate(next)
		if _, skip := excluded[iso]; skip {
			continue
		}
		dates = append(dates, iso)
	}
	return dates
}
