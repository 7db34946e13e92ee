package storage

import (
	"context"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

// Load implements the Storage interface
func (m *MockStorage) Load(ctx context.Context) ([]recurrence.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recurrence.Event), args.Error(1)
}

// Save implements the Storage interface
func (m *MockStorage) Save(ctx context.Context, events []recurrence.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// --- Helper methods for creating test data ---

// NewMockEvent creates a one-off test event on date
func NewMockEvent(id, title, date string) recurrence.Event {
	return recurrence.Event{
		ID:               id,
		Title:            title,
		Date:             date,
		StartTime:        "09:00",
		EndTime:          "10:00",
		Category:         "업무",
		Repeat:           recurrence.NoRepeat(),
		NotificationTime: 10,
	}
}

// NewMockSeriesEvent creates a test instance belonging to groupID
func NewMockSeriesEvent(id, groupID, date string) recurrence.Event {
	ev := NewMockEvent(id, "Series "+groupID, date)
	ev.Repeat = recurrence.Rule{Unit: recurrence.UnitDaily, Interval: 1, GroupID: groupID}
	return ev
}
