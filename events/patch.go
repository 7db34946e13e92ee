package events

import (
	"github.com/samber/mo"

	"github.com/cyp0633/recurcal/recurrence"
)

// GroupPatch lists the fields to change on every instance of a series.
// Absent options leave the field as stored.
type GroupPatch struct {
	Title            mo.Option[string]
	Description      mo.Option[string]
	Location         mo.Option[string]
	Category         mo.Option[string]
	StartTime        mo.Option[string]
	EndTime          mo.Option[string]
	NotificationTime mo.Option[int]
}

// IsEmpty reports whether the patch changes nothing
func (p GroupPatch) IsEmpty() bool {
	return p.Title.IsAbsent() && p.Description.IsAbsent() && p.Location.IsAbsent() &&
		p.Category.IsAbsent() && p.StartTime.IsAbsent() && p.EndTime.IsAbsent() &&
		p.NotificationTime.IsAbsent()
}

// Apply returns ev with the present fields replaced. Id, date and repeat are kept.
func (p GroupPatch) Apply(ev recurrence.Event) recurrence.Event {
	out := ev.Clone()
	out.Title = p.Title.OrElse(out.Title)
	out.Description = p.Description.OrElse(out.Description)
	out.Location = p.Location.OrElse(out.Location)
	out.Category = p.Category.OrElse(out.Category)
	out.StartTime = p.StartTime.OrElse(out.StartTime)
	out.EndTime = p.EndTime.OrElse(out.EndTime)
	out.NotificationTime = p.NotificationTime.OrElse(out.NotificationTime)
	return out
}
