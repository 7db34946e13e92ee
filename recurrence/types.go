package recurrence

import (
	"errors"
	"slices"
)

// Unit is the repeat cadence of a rule
type Unit string

const (
	UnitNone    Unit = "none"
	UnitDaily   Unit = "daily"
	UnitWeekly  Unit = "weekly"
	UnitMonthly Unit = "monthly"
	UnitYearly  Unit = "yearly"
)

// Valid reports whether u is one of the known units
func (u Unit) Valid() bool {
	switch u {
	case UnitNone, UnitDaily, UnitWeekly, UnitMonthly, UnitYearly:
		return true
	default:
		return false
	}
}

const (
	MinInterval = 1
	MaxInterval = 99
)

var (
	// ErrInvalidDate is returned when a string is not a real YYYY-MM-DD calendar date
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidRule is returned when a rule fails validation
	ErrInvalidRule = errors.New("invalid recurrence rule")
)

// Rule describes how an event repeats.
//
// The JSON shape matches the stored event records: the group identifier is
// serialized as "id" and the schema tag as "version".
type Rule struct {
	Unit     Unit `json:"type"`
	Interval int  `json:"interval"`
	// EndDate is an inclusive YYYY-MM-DD ceiling, empty when the rule is open-ended
	EndDate string `json:"endDate,omitempty"`
	// ExcludeDates suppresses occurrences landing on these dates
	ExcludeDates []string `json:"excludeDates,omitempty"`
	// Weekdays (0=Sunday .. 6=Saturday) restricts weekly rules
	Weekdays []int `json:"weekdays,omitempty"`
	// GroupID is shared by every instance materialized from one rule
	GroupID       string `json:"id,omitempty"`
	SchemaVersion int    `json:"version,omitempty"`
}

// NoRepeat is the rule of a one-off event
func NoRepeat() Rule {
	return Rule{Unit: UnitNone, Interval: 1}
}

// IsRepeating reports whether the rule produces more than the anchor
func (r Rule) IsRepeating() bool {
	return r.Unit != UnitNone && r.Unit != ""
}

// Clone returns a deep copy of the rule
func (r Rule) Clone() Rule {
	r.ExcludeDates = slices.Clone(r.ExcludeDates)
	r.Weekdays = slices.Clone(r.Weekdays)
	return r
}

// WithGroupID returns a copy of the rule carrying the given group id
func (r Rule) WithGroupID(id string) Rule {
	c := r.Clone()
	c.GroupID = id
	return c
}

// Event is a stored calendar event record
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Repeat      Rule   `json:"repeat"`
	// NotificationTime is the reminder lead time in minutes
	NotificationTime int `json:"notificationTime"`
}

// Clone returns a deep copy of the event
func (e Event) Clone() Event {
	e.Repeat = e.Repeat.Clone()
	return e
}
