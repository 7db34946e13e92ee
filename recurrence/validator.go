package recurrence

import (
	"fmt"
)

// ValidationError names the first rule field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidRule)
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRule
}

// Validator checks a rule's internal consistency. "Today" for the end date
// check comes from the injected clock.
type Validator struct {
	clock Clock
}

// NewValidator creates a validator reading today from clock; nil uses the system clock
func NewValidator(clock Clock) *Validator {
	if clock == nil {
		clock = SystemClock
	}
	return &Validator{clock: clock}
}

// Validate reports whether rule passes every check
func (v *Validator) Validate(rule Rule) bool {
	return v.Check(rule) == nil
}

// Check runs the same checks as Validate and returns the first failure
func (v *Validator) Check(rule Rule) error {
	if !rule.Unit.Valid() {
		return invalid("type", "unknown unit %q", rule.Unit)
	}
	if rule.Interval < MinInterval || rule.Interval > MaxInterval {
		return invalid("interval", "%d outside [%d,%d]", rule.Interval, MinInterval, MaxInterval)
	}
	if rule.Unit == UnitNone {
		return nil
	}

	if rule.EndDate != "" {
		end, err := ParseDate(rule.EndDate)
		if err != nil {
			return invalid("endDate", "%q is not a valid date", rule.EndDate)
		}
		if end.Before(Today(v.clock)) {
			return invalid("endDate", "%s is in the past", rule.EndDate)
		}
	}

	if err := checkExcludeDates(rule); err != nil {
		return err
	}

	if rule.Unit == UnitWeekly && rule.Weekdays != nil {
		if len(rule.Weekdays) == 0 {
			return invalid("weekdays", "empty selection")
		}
		for _, wd := range rule.Weekdays {
			if wd < 0 || wd > 6 {
				return invalid("weekdays", "%d outside [0,6]", wd)
			}
		}
	}
	return nil
}

func checkExcludeDates(rule Rule) error {
	if len(rule.ExcludeDates) == 0 {
		return nil
	}
	// EndDate was already checked when set
	end, _ := ParseDate(rule.EndDate)
	seen := make(map[string]struct{}, len(rule.ExcludeDates))
	for _, s := range rule.ExcludeDates {
		d, err := ParseDate(s)
		if err != nil {
			return invalid("excludeDates", "%q is not a valid date", s)
		}
		if _, dup := seen[s]; dup {
			return invalid("excludeDates", "%s listed twice", s)
		}
		seen[s] = struct{}{}
		if rule.EndDate != "" && d.After(end) {
			return invalid("excludeDates", "%s is after end date %s", s, rule.EndDate)
		}
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
