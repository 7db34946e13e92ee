package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/recurcal/recurrence"
)

// ClockLayout is the HH:MM layout of event start and end times
const ClockLayout = "15:04"

var (
	// ErrInvalidTime is returned when an event's start is not before its end
	ErrInvalidTime = errors.New("invalid event time")
)

const (
	StartTimeMessage = "시작 시간은 종료 시간보다 빨라야 합니다."
	EndTimeMessage   = "종료 시간은 시작 시간보다 늦어야 합니다."
)

// ValidateTimes checks that start and end are HH:MM clock times with start strictly earlier.
func ValidateTimes(start, end string) error {
	s, err := time.Parse(ClockLayout, start)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidTime, start)
	}
	e, err := time.Parse(ClockLayout, end)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidTime, end)
	}
	if !s.Before(e) {
		return fmt.Errorf("%w: %s", ErrInvalidTime, StartTimeMessage)
	}
	return nil
}

// startsAt resolves the event's date and start time in loc
func startsAt(ev recurrence.Event, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(recurrence.DateLayout+" "+ClockLayout, ev.Date+" "+ev.StartTime, loc)
}

func endsAt(ev recurrence.Event, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(recurrence.DateLayout+" "+ClockLayout, ev.Date+" "+ev.EndTime, loc)
}
