package recurrence

import (
	"fmt"
	"time"
)

// stepper computes the candidate occurrence for one iteration of the
// generation loop. ok=false means the period is skipped: nothing is emitted
// but the iteration still counts.
type stepper interface {
	next(iteration int, current, bound time.Time) (candidate time.Time, ok bool)
}

func newStepper(rule Rule, anchor time.Time) (stepper, error) {
	switch rule.Unit {
	case UnitDaily:
		return dailyStepper{interval: rule.Interval}, nil
	case UnitWeekly:
		if len(rule.Weekdays) == 0 {
			return weeklyStepper{interval: rule.Interval}, nil
		}
		var days [7]bool
		for _, wd := range rule.Weekdays {
			if wd < 0 || wd > 6 {
				return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, wd)
			}
			days[wd] = true
		}
		return weekdayStepper{anchor: anchor, interval: rule.Interval, days: days}, nil
	case UnitMonthly:
		return monthlyStepper{anchor: anchor, interval: rule.Interval}, nil
	case UnitYearly:
		return yearlyStepper{anchor: anchor, interval: rule.Interval}, nil
	default:
		return nil, fmt.Errorf("%w: unit %q", ErrInvalidRule, rule.Unit)
	}
}

type dailyStepper struct {
	interval int
}

func (s dailyStepper) next(_ int, current, _ time.Time) (time.Time, bool) {
	return AddDays(current, s.interval), true
}

// weeklyStepper keeps the anchor's weekday
type weeklyStepper struct {
	interval int
}

func (s weeklyStepper) next(_ int, current, _ time.Time) (time.Time, bool) {
	return AddWeeks(current, s.interval), true
}

// weekdayStepper walks day by day from the current occurrence until it finds
// a selected weekday inside an aligned week. Weeks are counted from the
// anchor, not from calendar week boundaries.
type weekdayStepper struct {
	anchor   time.Time
	interval int
	days     [7]bool
}

func (s weekdayStepper) next(_ int, current, bound time.Time) (time.Time, bool) {
	probe := AddDays(current, 1)
	for !probe.After(bound) {
		weeks := daysBetween(s.anchor, probe) / 7
		if weeks%s.interval == 0 && s.days[probe.Weekday()] {
			return probe, true
		}
		probe = AddDays(probe, 1)
	}
	// Past the boundary; the caller stops on it.
	return probe, true
}

// monthlyStepper recomputes from the anchor each time so a skipped short
// month does not pull later occurrences off the anchor's day.
type monthlyStepper struct {
	anchor   time.Time
	interval int
}

func (s monthlyStepper) next(iteration int, _, _ time.Time) (time.Time, bool) {
	candidate := AddMonths(s.anchor, (iteration+1)*s.interval)
	if candidate.Day() != s.anchor.Day() {
		return time.Time{}, false
	}
	return candidate, true
}

type yearlyStepper struct {
	anchor   time.Time
	interval int
}

func (s yearlyStepper) next(iteration int, _, _ time.Time) (time.Time, bool) {
	candidate := AddYears(s.anchor, (iteration+1)*s.interval)
	if s.anchor.Month() == time.February && s.anchor.Day() == 29 {
		// No Feb 28 substitution in common years
		if candidate.Month() != time.February || candidate.Day() != 29 {
			return time.Time{}, false
		}
	}
	return candidate, true
}

// excludeSet indexes exclusion dates for constant-time lookups
func excludeSet(dates []string) map[string]struct{} {
	if len(dates) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}
