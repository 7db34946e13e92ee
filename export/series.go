package export

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/recurcal/recurrence"
)

// SeriesCalendar builds a VCALENDAR where every series is folded back into one
// VEVENT carrying RRULE and EXDATE. The earliest stored instance supplies the
// event fields and the series group id becomes the UID. Open-ended series are
// bounded at their last stored instance. Dates the rule produces without a
// stored instance are listed in EXDATE. One-off events are written as is.
func SeriesCalendar(events []recurrence.Event, engine *recurrence.Engine, now time.Time) (*ical.Calendar, error) {
	cal := newCalendar()

	groups := make(map[string][]recurrence.Event)
	var order []string
	var singles []recurrence.Event
	for _, ev := range events {
		if !ev.Repeat.IsRepeating() || ev.Repeat.GroupID == "" {
			singles = append(singles, ev)
			continue
		}
		gid := ev.Repeat.GroupID
		if _, seen := groups[gid]; !seen {
			order = append(order, gid)
		}
		groups[gid] = append(groups[gid], ev)
	}

	for _, gid := range order {
		comps, err := seriesComponents(groups[gid], engine, now)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", gid, err)
		}
		cal.Children = append(cal.Children, comps...)
	}
	for _, ev := range singles {
		comp, err := eventComponent(ev, now)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

// WriteSeriesICS encodes events with series folded into recurring VEVENTs
func WriteSeriesICS(w io.Writer, events []recurrence.Event, engine *recurrence.Engine, now time.Time) error {
	cal, err := SeriesCalendar(events, engine, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func seriesComponents(instances []recurrence.Event, engine *recurrence.Engine, now time.Time) ([]*ical.Component, error) {
	instances = slices.Clone(instances)
	slices.SortStableFunc(instances, func(a, b recurrence.Event) int {
		return strings.Compare(a.Date, b.Date)
	})
	first, last := instances[0], instances[len(instances)-1]

	rule := first.Repeat.Clone()
	if rule.EndDate == "" {
		rule.EndDate = last.Date
	}
	rule.ExcludeDates = nil
	generated, err := engine.Generate(rule, first.Date)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]struct{}, len(instances))
	for _, inst := range instances {
		stored[inst.Date] = struct{}{}
	}
	var exdates []string
	covered := make(map[string]struct{}, len(generated))
	for _, d := range generated {
		covered[d] = struct{}{}
		if _, ok := stored[d]; !ok {
			exdates = append(exdates, d)
		}
	}

	master := first.Clone()
	master.ID = first.Repeat.GroupID
	comp, err := eventComponent(master, now)
	if err != nil {
		return nil, err
	}
	if err := recurrence.ApplyToComponent(comp, rule); err != nil {
		return nil, err
	}
	if len(exdates) > 0 {
		setExceptionDates(comp, exdates, first.StartTime)
	}
	comps := []*ical.Component{comp}

	// Stored instances off the rule's grid are kept as standalone events
	for _, inst := range instances {
		if _, ok := covered[inst.Date]; ok {
			continue
		}
		c, err := eventComponent(inst, now)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}

// setExceptionDates writes EXDATE as floating date-times matching DTSTART
func setExceptionDates(comp *ical.Component, dates []string, clock string) {
	values := make([]string, 0, len(dates))
	for _, d := range dates {
		t, err := floatingTime(d, clock)
		if err != nil {
			continue
		}
		values = append(values, t.Format(floatingLayout))
	}
	prop := ical.NewProp(ical.PropExceptionDates)
	prop.Value = strings.Join(values, ",")
	comp.Props.Set(prop)
}
