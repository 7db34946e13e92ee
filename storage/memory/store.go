// memory based implementation for testing purposes
package memory

import (
	"context"
	"sync"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
)

// Store implements storage.Storage with an in-process list
type Store struct {
	mu     sync.RWMutex
	events []recurrence.Event
	saves  int
}

var _ storage.Storage = (*Store)(nil)

// New creates a new in-memory storage seeded with events
func New(events ...recurrence.Event) *Store {
	return &Store{events: cloneAll(events)}
}

func (s *Store) Load(_ context.Context) ([]recurrence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.events), nil
}

func (s *Store) Save(ctx context.Context, events []recurrence.Event) error {
	if err := ctx.Err(); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "save canceled", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = cloneAll(events)
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}

func cloneAll(events []recurrence.Event) []recurrence.Event {
	out := make([]recurrence.Event, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}
