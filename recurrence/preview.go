package recurrence

import (
	"slices"
	"strconv"
)

// NoRepeatLabel is the preview of a non-repeating rule
const NoRepeatLabel = "반복 안 함"

var unitLabels = map[Unit]string{
	UnitDaily:   "일",
	UnitWeekly:  "주",
	UnitMonthly: "개월",
	UnitYearly:  "년",
}

// FormatPreview renders rule as a short Korean summary, e.g. "2주마다 (종료: 2024-12-31)"
func FormatPreview(rule Rule) string {
	if !rule.IsRepeating() {
		return NoRepeatLabel
	}
	label, ok := unitLabels[rule.Unit]
	if !ok {
		label = unitLabels[UnitYearly]
	}
	base := strconv.Itoa(rule.Interval) + label + "마다"
	if rule.EndDate != "" {
		return base + " (종료: " + rule.EndDate + ")"
	}
	return base
}

// MergeExcludeDates adds every day from rangeStart to rangeEnd to existing and
// returns the sorted, deduplicated result. When limitEnd is a valid date
// earlier than rangeEnd the range is clipped to it. Invalid bounds, or a start
// after the end, return existing unchanged.
func MergeExcludeDates(existing []string, rangeStart, rangeEnd, limitEnd string) []string {
	start, err := ParseDate(rangeStart)
	if err != nil {
		return existing
	}
	end, err := ParseDate(rangeEnd)
	if err != nil {
		return existing
	}
	if start.After(end) {
		return existing
	}
	if limit, err := ParseDate(limitEnd); err == nil && limit.Before(end) {
		end = limit
	}

	merged := slices.Clone(existing)
	for d := start; !d.After(end); d = AddDays(d, 1) {
		merged = append(merged, FormatDate(d))
	}
	slices.Sort(merged)
	return slices.Compact(merged)
}
