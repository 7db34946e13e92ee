package storage

import (
	"github.com/cyp0633/recurcal/recurrence"
)

// CurrentSchemaVersion is stamped on repeating rules by Normalize
const CurrentSchemaVersion = 1

// Normalize brings a stored event up to the current record shape. The
// interval is clamped into [1,99], repeating rules get a schema version if
// they lack one, and an empty unit is read as "none".
func Normalize(ev recurrence.Event) recurrence.Event {
	out := ev.Clone()
	if out.Repeat.Unit == "" {
		out.Repeat.Unit = recurrence.UnitNone
	}
	out.Repeat.Interval = clampInterval(out.Repeat.Interval)
	if out.Repeat.IsRepeating() && out.Repeat.SchemaVersion == 0 {
		out.Repeat.SchemaVersion = CurrentSchemaVersion
	}
	return out
}

// NormalizeAll applies Normalize to every event
func NormalizeAll(events []recurrence.Event) []recurrence.Event {
	out := make([]recurrence.Event, len(events))
	for i, ev := range events {
		out[i] = Normalize(ev)
	}
	return out
}

func clampInterval(interval int) int {
	if interval < recurrence.MinInterval {
		return recurrence.MinInterval
	}
	if interval > recurrence.MaxInterval {
		return recurrence.MaxInterval
	}
	return interval
}
