package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// ErrUnsupportedRRule is returned for RRULEs that cannot be expressed as a Rule
var ErrUnsupportedRRule = errors.New("unsupported RRULE")

// rruleWeekdays is indexed by Sunday-based weekday numbers
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var unitFrequencies = map[Unit]rrule.Frequency{
	UnitDaily:   rrule.DAILY,
	UnitWeekly:  rrule.WEEKLY,
	UnitMonthly: rrule.MONTHLY,
	UnitYearly:  rrule.YEARLY,
}

// ToRRule renders rule as an RRULE value (without the "RRULE:" prefix).
// Exclusion dates are not part of RRULE; see ApplyToComponent.
func ToRRule(rule Rule) (string, error) {
	freq, ok := unitFrequencies[rule.Unit]
	if !ok {
		return "", fmt.Errorf("%w: unit %q has no RRULE form", ErrUnsupportedRRule, rule.Unit)
	}
	opt := rrule.ROption{
		Freq:     freq,
		Interval: rule.Interval,
	}
	if rule.EndDate != "" {
		until, err := ParseDate(rule.EndDate)
		if err != nil {
			return "", fmt.Errorf("end date: %w", err)
		}
		// Last second of the end date, so timed occurrences on it are kept
		opt.Until = until.Add(24*time.Hour - time.Second)
	}
	if rule.Unit == UnitWeekly {
		for _, wd := range rule.Weekdays {
			if wd < 0 || wd > 6 {
				return "", fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, wd)
			}
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	}
	return opt.RRuleString(), nil
}

// RuleFromRRule parses an RRULE value into a Rule. Only FREQ, INTERVAL, UNTIL
// and plain BYDAY (weekly) are representable.
func RuleFromRRule(value string) (Rule, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to parse RRULE '%s': %w", value, err)
	}

	rule := Rule{Interval: opt.Interval}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	switch opt.Freq {
	case rrule.DAILY:
		rule.Unit = UnitDaily
	case rrule.WEEKLY:
		rule.Unit = UnitWeekly
	case rrule.MONTHLY:
		rule.Unit = UnitMonthly
	case rrule.YEARLY:
		rule.Unit = UnitYearly
	default:
		return Rule{}, fmt.Errorf("%w: FREQ %v", ErrUnsupportedRRule, opt.Freq)
	}
	if opt.Count > 0 {
		return Rule{}, fmt.Errorf("%w: COUNT", ErrUnsupportedRRule)
	}
	if !opt.Until.IsZero() {
		rule.EndDate = FormatDate(opt.Until.UTC())
	}
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return Rule{}, fmt.Errorf("%w: BYDAY with ordinal", ErrUnsupportedRRule)
		}
		if rule.Unit != UnitWeekly {
			return Rule{}, fmt.Errorf("%w: BYDAY outside WEEKLY", ErrUnsupportedRRule)
		}
		// rrule counts from Monday=0
		rule.Weekdays = append(rule.Weekdays, (wd.Day()+1)%7)
	}
	return rule, nil
}

// ExtractRuleFromComponent reads RRULE and EXDATE from an iCal component.
// A component without RRULE yields NoRepeat.
func ExtractRuleFromComponent(comp *ical.Component) (Rule, error) {
	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return NoRepeat(), nil
	}
	rule, err := RuleFromRRule(rruleProp.Value)
	if err != nil {
		return Rule{}, err
	}

	for _, exdateProp := range comp.Props.Values(ical.PropExceptionDates) {
		if exdateProp.Value == "" {
			continue
		}
		rule.ExcludeDates = append(rule.ExcludeDates, parseExceptionDates(exdateProp.Value)...)
	}
	return rule, nil
}

// ApplyToComponent writes RRULE and a date-valued EXDATE for rule onto comp.
// Non-repeating rules leave comp untouched.
func ApplyToComponent(comp *ical.Component, rule Rule) error {
	if !rule.IsRepeating() {
		return nil
	}
	value, err := ToRRule(rule)
	if err != nil {
		return err
	}
	// Not SetText: RRULE separators must stay unescaped
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = value
	comp.Props.Set(rruleProp)

	if len(rule.ExcludeDates) > 0 {
		compact := make([]string, 0, len(rule.ExcludeDates))
		for _, s := range rule.ExcludeDates {
			d, err := ParseDate(s)
			if err != nil {
				return fmt.Errorf("exclude date: %w", err)
			}
			compact = append(compact, d.Format("20060102"))
		}
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.SetValueType(ical.ValueDate)
		prop.Value = strings.Join(compact, ",")
		comp.Props.Set(prop)
	}
	return nil
}

// parseExceptionDates parses EXDATE values into YYYY-MM-DD strings. Date-time
// values are reduced to their UTC calendar date; unparsable entries are dropped.
func parseExceptionDates(value string) []string {
	var dates []string
	for _, exdateStr := range strings.Split(value, ",") {
		exdateStr = strings.TrimSpace(exdateStr)
		if exdateStr == "" {
			continue
		}

		exdate, err := time.Parse("20060102", exdateStr)
		if err != nil {
			exdate, err = time.Parse("20060102T150405Z", exdateStr)
		}
		if err != nil {
			exdate, err = time.Parse("20060102T150405", exdateStr)
		}
		if err == nil {
			dates = append(dates, FormatDate(exdate.UTC()))
		}
	}
	return dates
}
