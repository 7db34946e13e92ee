package events

import (
	"io"
	"log/slog"

	"github.com/cyp0633/recurcal/recurrence"
)

// managerConfig holds the collaborators of a Manager
type managerConfig struct {
	engine    *recurrence.Engine
	clock     recurrence.Clock
	logger    *slog.Logger
	newID     func() string
	validator *recurrence.Validator
}

// Option is a function that modifies the manager configuration
type Option func(*managerConfig)

// WithEngine sets the recurrence engine used to expand repeating events
func WithEngine(engine *recurrence.Engine) Option {
	return func(c *managerConfig) {
		c.engine = engine
	}
}

// WithClock sets the clock used for end date validation
func WithClock(clock recurrence.Clock) Option {
	return func(c *managerConfig) {
		c.clock = clock
	}
}

// WithLogger sets the logger. If nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithIDGenerator sets the id source for one-off events created without an id
func WithIDGenerator(newID func() string) Option {
	return func(c *managerConfig) {
		c.newID = newID
	}
}

func (c *managerConfig) applyDefaults() {
	if c.engine == nil {
		c.engine = recurrence.NewEngine()
	}
	if c.clock == nil {
		c.clock = recurrence.SystemClock
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.newID == nil {
		c.newID = c.engine.Config().IDGenerator
	}
	if c.newID == nil {
		c.newID = uuidString
	}
	c.validator = recurrence.NewValidator(c.clock)
}
