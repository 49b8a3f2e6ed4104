package recurring

import (
	"errors"
	"fmt"

	"github.com/kassa/kassa/internal/date"
)

// ErrUnsupportedFrequency is returned when a rule carries a frequency value
// the calculator does not know. Validation keeps such rules out of the store,
// but a corrupted row must still fail cleanly rather than silently fire.
var ErrUnsupportedFrequency = errors.New("unsupported recurrence frequency")

// Occurrences returns the strictly increasing calendar dates on which the rule
// fires inside [queryStart, queryEnd]. The result is further bounded by the
// rule's own [StartDate, EndDate] range. Pure function, no I/O.
func Occurrences(rule Rule, queryStart, queryEnd date.Date) ([]date.Date, error) {
	if rule.Interval < 1 {
		return nil, fmt.Errorf("%w: interval %d", ErrInvalidRule, rule.Interval)
	}

	rangeStart := queryStart
	if rule.StartDate.After(rangeStart) {
		rangeStart = rule.StartDate
	}
	rangeEnd := queryEnd
	if !rule.EndDate.IsZero() && rule.EndDate.Before(rangeEnd) {
		rangeEnd = rule.EndDate
	}
	if rangeStart.After(rangeEnd) {
		return nil, nil
	}

	var step func(k int) date.Date
	var first int
	switch rule.Frequency {
	case Daily:
		step = func(k int) date.Date { return rule.StartDate.AddDays(k * rule.Interval) }
		first = alignDays(rule.StartDate, rangeStart, rule.Interval)
	case Weekly:
		step = func(k int) date.Date { return rule.StartDate.AddDays(k * rule.Interval * 7) }
		first = alignDays(rule.StartDate, rangeStart, rule.Interval*7)
	case Monthly:
		// Each occurrence is recomputed from the anchor so that month-end
		// clamping never compounds: a rule on the 31st emits Feb 28/29 and is
		// back on the 31st in March.
		step = func(k int) date.Date { return rule.StartDate.AddMonths(k * rule.Interval) }
		first = alignUnits(rangeStart.MonthIndex()-rule.StartDate.MonthIndex(), rule.Interval)
	case Yearly:
		step = func(k int) date.Date { return rule.StartDate.AddYears(k * rule.Interval) }
		first = alignUnits(rangeStart.Year()-rule.StartDate.Year(), rule.Interval)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, rule.Frequency)
	}

	// Clamping can place the aligned candidate a few days before rangeStart
	// within the same month or year; one more cadence step is then enough.
	if step(first).Before(rangeStart) {
		first++
	}

	var out []date.Date
	for k := first; ; k++ {
		d := step(k)
		if d.After(rangeEnd) {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

// alignDays returns the smallest k such that anchor + k*stepDays is at or
// after rangeStart. When the range starts before the anchor, the anchor
// itself (k = 0) is the first occurrence.
func alignDays(anchor, rangeStart date.Date, stepDays int) int {
	diff := rangeStart.DaysSince(anchor)
	if diff <= 0 {
		return 0
	}
	return (diff + stepDays - 1) / stepDays
}

// alignUnits is the same congruence search over whole months or years.
func alignUnits(diff, step int) int {
	if diff <= 0 {
		return 0
	}
	return (diff + step - 1) / step
}
