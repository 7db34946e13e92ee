package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
	"github.com/cyp0633/recurcal/storage/memory"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestManager(t *testing.T, store storage.Storage) *Manager {
	t.Helper()
	engine := recurrence.NewEngineWithConfig(recurrence.EngineConfig{
		CapDate:                  recurrence.DefaultCapDate,
		MaxAdditionalOccurrences: recurrence.DefaultMaxAdditionalOccurrences,
		IDGenerator:              sequentialIDs(),
	})
	clock := recurrence.FixedClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	m, err := NewManager(store, WithEngine(engine), WithClock(clock))
	require.NoError(t, err)
	return m
}

func meeting(date string, repeat recurrence.Rule) recurrence.Event {
	return recurrence.Event{
		Title:            "Standup",
		Date:             date,
		StartTime:        "09:00",
		EndTime:          "09:15",
		Category:         "업무",
		Repeat:           repeat,
		NotificationTime: 10,
	}
}

func TestNewManager_RequiresStorage(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("One-off event gets an id", func(t *testing.T) {
		store := memory.New()
		m := newTestManager(t, store)

		created, err := m.Create(ctx, meeting("2024-01-02", recurrence.Rule{}))
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "id-1", created[0].ID)
		assert.Equal(t, recurrence.NoRepeat(), created[0].Repeat)

		stored, err := m.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, created, stored)
	})

	t.Run("Repeating event is expanded", func(t *testing.T) {
		store := memory.New(storage.NewMockEvent("existing", "Lunch", "2024-01-01"))
		m := newTestManager(t, store)

		rule := recurrence.Rule{Unit: recurrence.UnitDaily, Interval: 1, EndDate: "2024-01-05"}
		created, err := m.Create(ctx, meeting("2024-01-01", rule))
		require.NoError(t, err)
		require.Len(t, created, 5)

		// The group id is minted before the instance ids
		for i, ev := range created {
			assert.Equal(t, "id-1", ev.Repeat.GroupID)
			assert.Equal(t, fmt.Sprintf("id-%d", i+2), ev.ID)
		}
		assert.Equal(t, "2024-01-05", created[4].Date)

		stored, err := m.List(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 6)
		assert.Equal(t, 1, store.Saves())
	})

	t.Run("Rejected input is not stored", func(t *testing.T) {
		tests := []struct {
			name    string
			event   recurrence.Event
			wantErr error
		}{
			{
				name: "end before start",
				event: func() recurrence.Event {
					ev := meeting("2024-01-02", recurrence.NoRepeat())
					ev.EndTime = "08:00"
					return ev
				}(),
				wantErr: ErrInvalidTime,
			},
			{
				name:    "interval too large",
				event:   meeting("2024-01-02", recurrence.Rule{Unit: recurrence.UnitDaily, Interval: 100}),
				wantErr: recurrence.ErrInvalidRule,
			},
			{
				name:    "end date in the past",
				event:   meeting("2023-12-01", recurrence.Rule{Unit: recurrence.UnitDaily, Interval: 1, EndDate: "2023-12-31"}),
				wantErr: recurrence.ErrInvalidRule,
			},
			{
				name:    "malformed date",
				event:   meeting("2024-02-30", recurrence.NoRepeat()),
				wantErr: recurrence.ErrInvalidDate,
			},
			{
				name:    "malformed anchor",
				event:   meeting("2024-13-01", recurrence.Rule{Unit: recurrence.UnitWeekly, Interval: 1}),
				wantErr: recurrence.ErrInvalidDate,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := memory.New()
				m := newTestManager(t, store)

				_, err := m.Create(ctx, tt.event)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, store.Saves())
			})
		}
	})
}

func TestManager_Get(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.New(storage.NewMockEvent("e1", "Dentist", "2024-03-01")))

	ev, err := m.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Dentist", ev.Title)

	_, err = m.Get(ctx, "missing")
	assert.True(t, storage.IsType(err, storage.ErrNotFound))

	_, err = m.Group(ctx, "missing")
	assert.True(t, storage.IsType(err, storage.ErrNotFound))
}

func seriesStore() *memory.Store {
	var seed []recurrence.Event
	for i := 1; i <= 10; i++ {
		ev := storage.NewMockSeriesEvent(fmt.Sprintf("s%d", i), "g1", fmt.Sprintf("2024-01-%02d", i))
		ev.Repeat.EndDate = "2024-01-10"
		seed = append(seed, ev)
	}
	seed = append(seed, storage.NewMockEvent("other", "Dentist", "2024-01-03"))
	return memory.New(seed...)
}

func TestManager_UpdateSingle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, seriesStore())

	ev, err := m.Get(ctx, "s3")
	require.NoError(t, err)
	ev.Title = "Moved standup"
	ev.StartTime = "10:00"
	ev.EndTime = "10:30"

	updated, err := m.UpdateSingle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, recurrence.NoRepeat(), updated.Repeat)

	group, err := m.Group(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, group, 9)
	assert.NotContains(t, storage.IDs(group), "s3")

	stored, err := m.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "Moved standup", stored.Title)

	ev.ID = "missing"
	_, err = m.UpdateSingle(ctx, ev)
	assert.True(t, storage.IsType(err, storage.ErrNotFound))
}

func TestManager_UpdateGroup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, seriesStore())

	updated, err := m.UpdateGroup(ctx, "g1", GroupPatch{
		Title:            mo.Some("Weekly sync"),
		NotificationTime: mo.Some(60),
	})
	require.NoError(t, err)
	require.Len(t, updated, 10)
	for i, ev := range updated {
		assert.Equal(t, "Weekly sync", ev.Title)
		assert.Equal(t, 60, ev.NotificationTime)
		assert.Equal(t, fmt.Sprintf("s%d", i+1), ev.ID)
		assert.Equal(t, fmt.Sprintf("2024-01-%02d", i+1), ev.Date)
		assert.Equal(t, "g1", ev.Repeat.GroupID)
		assert.Equal(t, "09:00", ev.StartTime)
	}

	other, err := m.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "Dentist", other.Title)

	_, err = m.UpdateGroup(ctx, "g1", GroupPatch{EndTime: mo.Some("08:00")})
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = m.UpdateGroup(ctx, "nope", GroupPatch{Title: mo.Some("x")})
	assert.True(t, storage.IsType(err, storage.ErrNotFound))
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Single", func(t *testing.T) {
		m := newTestManager(t, seriesStore())
		require.NoError(t, m.DeleteEvent(ctx, "other"))
		err := m.DeleteEvent(ctx, "other")
		assert.True(t, storage.IsType(err, storage.ErrNotFound))
	})

	t.Run("Group", func(t *testing.T) {
		m := newTestManager(t, seriesStore())
		n, err := m.DeleteGroup(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 10, n)

		stored, err := m.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"other"}, storage.IDs(stored))

		_, err = m.DeleteGroup(ctx, "g1")
		assert.True(t, storage.IsType(err, storage.ErrNotFound))
	})
}

func TestManager_ExcludeFromGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("Range inside the series", func(t *testing.T) {
		m := newTestManager(t, seriesStore())
		removed, err := m.ExcludeFromGroup(ctx, "g1", "2024-01-03", "2024-01-05")
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		group, err := m.Group(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, group, 7)
		for _, ev := range group {
			assert.Equal(t, []string{"2024-01-03", "2024-01-04", "2024-01-05"}, ev.Repeat.ExcludeDates)
		}

		// The one-off event on an excluded day is untouched
		_, err = m.Get(ctx, "other")
		assert.NoError(t, err)
	})

	t.Run("Range clipped to the end date", func(t *testing.T) {
		m := newTestManager(t, seriesStore())
		removed, err := m.ExcludeFromGroup(ctx, "g1", "2024-01-09", "2024-01-20")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		group, err := m.Group(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-09", "2024-01-10"}, group[0].Repeat.ExcludeDates)
	})

	t.Run("Invalid range", func(t *testing.T) {
		m := newTestManager(t, seriesStore())
		_, err := m.ExcludeFromGroup(ctx, "g1", "2024-01-05", "2024-01-03")
		assert.ErrorIs(t, err, recurrence.ErrInvalidDate)
		_, err = m.ExcludeFromGroup(ctx, "g1", "soon", "2024-01-03")
		assert.ErrorIs(t, err, recurrence.ErrInvalidDate)
	})
}

func TestManager_StorageFailures(t *testing.T) {
	ctx := context.Background()
	unavailable := &storage.Error{Type: storage.ErrUnavailable, Message: "disk gone", Err: errors.New("EIO")}

	t.Run("Load error", func(t *testing.T) {
		mockStorage := &storage.MockStorage{}
		mockStorage.On("Load", ctx).Return(nil, unavailable)
		m := newTestManager(t, mockStorage)

		_, err := m.List(ctx)
		assert.True(t, storage.IsType(err, storage.ErrUnavailable))
		mockStorage.AssertExpectations(t)
	})

	t.Run("Save error keeps nothing", func(t *testing.T) {
		mockStorage := &storage.MockStorage{}
		mockStorage.On("Load", ctx).Return([]recurrence.Event{}, nil)
		mockStorage.On("Save", ctx, mock.AnythingOfType("[]recurrence.Event")).Return(unavailable)
		m := newTestManager(t, mockStorage)

		_, err := m.Create(ctx, meeting("2024-01-02", recurrence.NoRepeat()))
		assert.True(t, storage.IsType(err, storage.ErrUnavailable))
		mockStorage.AssertExpectations(t)
	})

	t.Run("Invalid input never reaches storage", func(t *testing.T) {
		mockStorage := &storage.MockStorage{}
		m := newTestManager(t, mockStorage)

		ev := meeting("2024-01-02", recurrence.NoRepeat())
		ev.StartTime = "25:00"
		_, err := m.Create(ctx, ev)
		assert.ErrorIs(t, err, ErrInvalidTime)
		mockStorage.AssertNotCalled(t, "Load", mock.Anything)
	})
}
