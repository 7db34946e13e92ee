package storage

import (
	"slices"

	"github.com/cyp0633/recurcal/recurrence"
)

// FilterByGroup returns the events whose repeat rule carries groupID, in stored order
func FilterByGroup(events []recurrence.Event, groupID string) []recurrence.Event {
	if groupID == "" {
		return nil
	}
	var group []recurrence.Event
	for _, ev := range events {
		if ev.Repeat.GroupID == groupID {
			group = append(group, ev)
		}
	}
	return group
}

// IndexOf returns the position of the event with id, or -1
func IndexOf(events []recurrence.Event, id string) int {
	return slices.IndexFunc(events, func(ev recurrence.Event) bool {
		return ev.ID == id
	})
}

// ReplaceByID returns a copy of events where every event whose id appears in
// updates is replaced. Updates with unknown ids are ignored.
func ReplaceByID(events []recurrence.Event, updates []recurrence.Event) []recurrence.Event {
	byID := make(map[string]recurrence.Event, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}
	out := make([]recurrence.Event, len(events))
	for i, ev := range events {
		if u, ok := byID[ev.ID]; ok {
			out[i] = u
		} else {
			out[i] = ev
		}
	}
	return out
}

// RemoveIDs returns a copy of events without the given ids and how many were removed
func RemoveIDs(events []recurrence.Event, ids []string) ([]recurrence.Event, int) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]recurrence.Event, 0, len(events))
	for _, ev := range events {
		if _, ok := drop[ev.ID]; ok {
			continue
		}
		out = append(out, ev)
	}
	return out, len(events) - len(out)
}

// IDs lists the ids of events in order
func IDs(events []recurrence.Event) []string {
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	return ids
}
