// Package export renders stored events as iCalendar (RFC 5545) and xCal
// (RFC 6321) documents, and reads iCalendar back into event records.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/recurcal/recurrence"
)

const (
	// ProductID is written as the calendar PRODID
	ProductID = "-//github.com/cyp0633/recurcal//NONSGML v1.0//EN"
	// PropGroup carries the series group id of an instance
	PropGroup = "X-RECURCAL-GROUP"
	// PropNotification carries the reminder lead time in minutes
	PropNotification = "X-RECURCAL-NOTIFY"

	floatingLayout = "20060102T150405"
)

// NewCalendar builds a VCALENDAR with one VEVENT per stored event
func NewCalendar(events []recurrence.Event, now time.Time) (*ical.Calendar, error) {
	cal := newCalendar()
	for _, ev := range events {
		comp, err := eventComponent(ev, now)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

// WriteICS encodes events as an iCalendar stream, one VEVENT per instance
func WriteICS(w io.Writer, events []recurrence.Event, now time.Time) error {
	cal, err := NewCalendar(events, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	return cal
}

func eventComponent(ev recurrence.Event, now time.Time) (*ical.Component, error) {
	start, err := floatingTime(ev.Date, ev.StartTime)
	if err != nil {
		return nil, fmt.Errorf("event %s start: %w", ev.ID, err)
	}
	end, err := floatingTime(ev.Date, ev.EndTime)
	if err != nil {
		return nil, fmt.Errorf("event %s end: %w", ev.ID, err)
	}

	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, ev.ID)
	comp.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	comp.Props.SetText(ical.PropSummary, ev.Title)
	setFloating(comp, ical.PropDateTimeStart, start)
	setFloating(comp, ical.PropDateTimeEnd, end)
	if ev.Description != "" {
		comp.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		comp.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.Category != "" {
		comp.Props.SetText(ical.PropCategories, ev.Category)
	}
	if ev.NotificationTime > 0 {
		prop := ical.NewProp(PropNotification)
		prop.Value = fmt.Sprint(ev.NotificationTime)
		prop.SetValueType(ical.ValueInt)
		comp.Props.Set(prop)
	}
	if ev.Repeat.GroupID != "" {
		comp.Props.SetText(PropGroup, ev.Repeat.GroupID)
	}
	return comp, nil
}

// floatingTime combines a YYYY-MM-DD date and an HH:MM time into a wall-clock time
func floatingTime(date, clock string) (time.Time, error) {
	if _, err := recurrence.ParseDate(date); err != nil {
		return time.Time{}, err
	}
	return time.Parse(recurrence.DateLayout+" 15:04", date+" "+clock)
}

// setFloating writes a DATE-TIME without zone designator or TZID
func setFloating(comp *ical.Component, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	comp.Props.Set(prop)
}

// ErrNoEvents is returned by ReadICS for a calendar without VEVENTs
var ErrNoEvents = errors.New("no events found in calendar")

// ReadICS decodes an iCalendar stream into event records. Recurrence
// properties become the record's repeat rule; the records are not expanded.
func ReadICS(r io.Reader) ([]recurrence.Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	vevents := cal.Events()
	if len(vevents) == 0 {
		return nil, ErrNoEvents
	}

	out := make([]recurrence.Event, 0, len(vevents))
	for _, vev := range vevents {
		ev, err := eventFromComponent(vev.Component)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func eventFromComponent(comp *ical.Component) (recurrence.Event, error) {
	var ev recurrence.Event
	ev.ID = propText(comp, ical.PropUID)
	ev.Title = propText(comp, ical.PropSummary)
	ev.Description = propText(comp, ical.PropDescription)
	ev.Location = propText(comp, ical.PropLocation)
	ev.Category = strings.Split(propText(comp, ical.PropCategories), ",")[0]

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return ev, fmt.Errorf("event %s: missing DTSTART", ev.ID)
	}
	start, err := startProp.DateTime(time.UTC)
	if err != nil {
		return ev, fmt.Errorf("event %s: DTSTART: %w", ev.ID, err)
	}
	end := start.Add(time.Hour)
	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if end, err = endProp.DateTime(time.UTC); err != nil {
			return ev, fmt.Errorf("event %s: DTEND: %w", ev.ID, err)
		}
	}
	ev.Date = recurrence.FormatDate(start)
	ev.StartTime = start.Format("15:04")
	ev.EndTime = end.Format("15:04")

	if prop := comp.Props.Get(PropNotification); prop != nil {
		if n, err := prop.Int(); err == nil {
			ev.NotificationTime = n
		}
	}

	rule, err := recurrence.ExtractRuleFromComponent(comp)
	if err != nil {
		return ev, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	if group := propText(comp, PropGroup); group != "" && rule.IsRepeating() {
		rule.GroupID = group
	}
	ev.Repeat = rule
	return ev, nil
}

func propText(comp *ical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	text, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return text
}
