package events

import (
	"fmt"
	"slices"
	"time"

	"github.com/cyp0633/recurcal/recurrence"
)

// Upcoming returns the events starting within their notification lead time of
// now that are not listed in notified. Events that already started are skipped.
func Upcoming(events []recurrence.Event, now time.Time, notified []string) []recurrence.Event {
	var due []recurrence.Event
	for _, ev := range events {
		start, err := startsAt(ev, now.Location())
		if err != nil {
			continue
		}
		until := start.Sub(now)
		if until <= 0 || until > time.Duration(ev.NotificationTime)*time.Minute {
			continue
		}
		if slices.Contains(notified, ev.ID) {
			continue
		}
		due = append(due, ev)
	}
	return due
}

// NotificationMessage is the reminder text shown for ev
func NotificationMessage(ev recurrence.Event) string {
	return fmt.Sprintf("%d분 후 %s 일정이 시작됩니다.", ev.NotificationTime, ev.Title)
}

// Overlaps returns the events sharing candidate's date whose time ranges
// intersect it. An event with candidate's id is never reported.
func Overlaps(events []recurrence.Event, candidate recurrence.Event) []recurrence.Event {
	cs, err := startsAt(candidate, time.UTC)
	if err != nil {
		return nil
	}
	ce, err := endsAt(candidate, time.UTC)
	if err != nil {
		return nil
	}

	var hits []recurrence.Event
	for _, ev := range events {
		if ev.Date != candidate.Date || (candidate.ID != "" && ev.ID == candidate.ID) {
			continue
		}
		s, err := startsAt(ev, time.UTC)
		if err != nil {
			continue
		}
		e, err := endsAt(ev, time.UTC)
		if err != nil {
			continue
		}
		if cs.Before(e) && s.Before(ce) {
			hits = append(hits, ev)
		}
	}
	return hits
}
