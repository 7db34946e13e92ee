// Package events manages stored calendar events on top of the recurrence
// engine. Repeating events are expanded into one stored record per
// occurrence; the records of one series share the rule's group id.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
)

func uuidString() string {
	return uuid.NewString()
}

// Manager creates, edits and deletes events and series in a Storage
type Manager struct {
	store  storage.Storage
	config managerConfig
	logger *slog.Logger
}

// NewManager creates a manager backed by store
func NewManager(store storage.Storage, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}
	var config managerConfig
	for _, opt := range opts {
		opt(&config)
	}
	config.applyDefaults()

	return &Manager{
		store:  store,
		config: config,
		logger: config.logger,
	}, nil
}

// Engine returns the recurrence engine in use
func (m *Manager) Engine() *recurrence.Engine {
	return m.config.engine
}

// Create validates base and stores it. A repeating rule is expanded into one
// record per occurrence date; the created records are returned in date order.
func (m *Manager) Create(ctx context.Context, base recurrence.Event) ([]recurrence.Event, error) {
	if err := ValidateTimes(base.StartTime, base.EndTime); err != nil {
		m.logger.Warn("rejected event times",
			"title", base.Title,
			"start", base.StartTime,
			"end", base.EndTime)
		return nil, err
	}
	if base.Repeat.Unit == "" {
		base.Repeat.Unit = recurrence.UnitNone
	}
	if !base.Repeat.IsRepeating() && base.Repeat.Interval == 0 {
		base.Repeat.Interval = recurrence.MinInterval
	}
	if err := m.config.validator.Check(base.Repeat); err != nil {
		m.logger.Warn("rejected recurrence rule",
			"title", base.Title,
			"error", err)
		return nil, err
	}

	var created []recurrence.Event
	if base.Repeat.IsRepeating() {
		instances, err := m.config.engine.Materialize(base.Repeat, base)
		if err != nil {
			m.logger.Warn("failed to expand recurrence rule",
				"title", base.Title,
				"date", base.Date,
				"error", err)
			return nil, err
		}
		created = instances
		m.logger.Debug("expanded repeating event",
			"title", base.Title,
			"group_id", instances[0].Repeat.GroupID,
			"count", len(instances))
	} else {
		if _, err := recurrence.ParseDate(base.Date); err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		single := base.Clone()
		if single.ID == "" {
			single.ID = m.config.newID()
		}
		created = []recurrence.Event{single}
	}

	stored, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.save(ctx, append(stored, created...)); err != nil {
		return nil, err
	}

	m.logger.Info("events created",
		"title", base.Title,
		"count", len(created))
	return created, nil
}

// List returns every stored event
func (m *Manager) List(ctx context.Context) ([]recurrence.Event, error) {
	return m.load(ctx)
}

// Get returns the event with id
func (m *Manager) Get(ctx context.Context, id string) (recurrence.Event, error) {
	stored, err := m.load(ctx)
	if err != nil {
		return recurrence.Event{}, err
	}
	i := storage.IndexOf(stored, id)
	if i < 0 {
		return recurrence.Event{}, storage.NotFound("event %s", id)
	}
	return stored[i], nil
}

// Group returns the instances of the series groupID in stored order
func (m *Manager) Group(ctx context.Context, groupID string) ([]recurrence.Event, error) {
	stored, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	group := storage.FilterByGroup(stored, groupID)
	if len(group) == 0 {
		return nil, storage.NotFound("group %s", groupID)
	}
	return group, nil
}

// UpdateSingle replaces the stored event with ev's id. The updated record is
// detached from any series: its repeat becomes a non-repeating rule.
func (m *Manager) UpdateSingle(ctx context.Context, ev recurrence.Event) (recurrence.Event, error) {
	if err := ValidateTimes(ev.StartTime, ev.EndTime); err != nil {
		return recurrence.Event{}, err
	}
	if _, err := recurrence.ParseDate(ev.Date); err != nil {
		return recurrence.Event{}, fmt.Errorf("date: %w", err)
	}

	stored, err := m.load(ctx)
	if err != nil {
		return recurrence.Event{}, err
	}
	if storage.IndexOf(stored, ev.ID) < 0 {
		return recurrence.Event{}, storage.NotFound("event %s", ev.ID)
	}

	updated := ev.Clone()
	updated.Repeat = recurrence.NoRepeat()
	if err := m.save(ctx, storage.ReplaceByID(stored, []recurrence.Event{updated})); err != nil {
		return recurrence.Event{}, err
	}

	m.logger.Info("event updated",
		"id", ev.ID,
		"detached_from", ev.Repeat.GroupID)
	return updated, nil
}

// UpdateGroup applies patch to every instance of the series groupID and
// returns the updated instances.
func (m *Manager) UpdateGroup(ctx context.Context, groupID string, patch GroupPatch) ([]recurrence.Event, error) {
	stored, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	group := storage.FilterByGroup(stored, groupID)
	if len(group) == 0 {
		return nil, storage.NotFound("group %s", groupID)
	}
	if patch.IsEmpty() {
		return group, nil
	}

	updated := make([]recurrence.Event, len(group))
	for i, ev := range group {
		updated[i] = patch.Apply(ev)
		if err := ValidateTimes(updated[i].StartTime, updated[i].EndTime); err != nil {
			return nil, err
		}
	}
	if err := m.save(ctx, storage.ReplaceByID(stored, updated)); err != nil {
		return nil, err
	}

	m.logger.Info("group updated",
		"group_id", groupID,
		"count", len(updated))
	return updated, nil
}

// DeleteEvent removes the event with id
func (m *Manager) DeleteEvent(ctx context.Context, id string) error {
	stored, err := m.load(ctx)
	if err != nil {
		return err
	}
	remaining, removed := storage.RemoveIDs(stored, []string{id})
	if removed == 0 {
		m.logger.Info("event not found for deletion", "id", id)
		return storage.NotFound("event %s", id)
	}
	if err := m.save(ctx, remaining); err != nil {
		return err
	}
	m.logger.Info("event deleted", "id", id)
	return nil
}

// DeleteGroup removes every instance of the series groupID and returns how many were removed
func (m *Manager) DeleteGroup(ctx context.Context, groupID string) (int, error) {
	stored, err := m.load(ctx)
	if err != nil {
		return 0, err
	}
	group := storage.FilterByGroup(stored, groupID)
	if len(group) == 0 {
		m.logger.Info("group not found for deletion", "group_id", groupID)
		return 0, storage.NotFound("group %s", groupID)
	}
	remaining, removed := storage.RemoveIDs(stored, storage.IDs(group))
	if err := m.save(ctx, remaining); err != nil {
		return 0, err
	}
	m.logger.Info("group deleted",
		"group_id", groupID,
		"count", removed)
	return removed, nil
}

// ExcludeFromGroup drops the days from start to end (inclusive) from the
// series groupID. Every remaining instance records the range in its exclude
// dates, clipped to the rule's end date, and instances inside the range are
// deleted. It returns the number of deleted instances.
func (m *Manager) ExcludeFromGroup(ctx context.Context, groupID, start, end string) (int, error) {
	from, err := recurrence.ParseDate(start)
	if err != nil {
		return 0, fmt.Errorf("range start: %w", err)
	}
	to, err := recurrence.ParseDate(end)
	if err != nil {
		return 0, fmt.Errorf("range end: %w", err)
	}
	if from.After(to) {
		return 0, fmt.Errorf("%w: range %s..%s is reversed", recurrence.ErrInvalidDate, start, end)
	}

	stored, err := m.load(ctx)
	if err != nil {
		return 0, err
	}
	group := storage.FilterByGroup(stored, groupID)
	if len(group) == 0 {
		return 0, storage.NotFound("group %s", groupID)
	}

	var drop []string
	kept := make([]recurrence.Event, 0, len(group))
	for _, ev := range group {
		if ev.Date >= start && ev.Date <= end {
			drop = append(drop, ev.ID)
			continue
		}
		ev = ev.Clone()
		ev.Repeat.ExcludeDates = recurrence.MergeExcludeDates(ev.Repeat.ExcludeDates, start, end, ev.Repeat.EndDate)
		kept = append(kept, ev)
	}

	remaining, removed := storage.RemoveIDs(storage.ReplaceByID(stored, kept), drop)
	if err := m.save(ctx, remaining); err != nil {
		return 0, err
	}

	m.logger.Info("range excluded from group",
		"group_id", groupID,
		"start", start,
		"end", end,
		"removed", removed)
	return removed, nil
}

func (m *Manager) load(ctx context.Context) ([]recurrence.Event, error) {
	stored, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error("failed to load events", "error", err)
		return nil, fmt.Errorf("load events: %w", err)
	}
	return stored, nil
}

func (m *Manager) save(ctx context.Context, events []recurrence.Event) error {
	if err := m.store.Save(ctx, events); err != nil {
		m.logger.Error("failed to save events",
			"error", err,
			"count", len(events))
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}
