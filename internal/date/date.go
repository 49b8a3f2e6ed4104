package date

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format for calendar dates.
const Layout = "2006-01-02"

// Date is an immutable calendar date with no time-of-day and no timezone.
// All cadence arithmetic in the application happens on this type so that
// daylight-saving shifts and locale settings can never move an occurrence.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New returns the date for the given year, month and day. Out-of-range days
// are normalized the same way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime truncates a timestamp to its calendar date, evaluated in UTC.
func FromTime(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{year: y, month: m, day: d}
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }

// IsZero reports whether d is the zero value, used to model "no end date".
func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Time returns the date as midnight UTC, the interchange representation used
// at the database and JSON boundaries.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(Layout)
}

// Compare returns -1, 0, or 1 depending on whether d is before, equal to, or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return sign(d.year - o.year)
	case d.month != o.month:
		return sign(int(d.month) - int(o.month))
	default:
		return sign(d.day - o.day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d.Compare(o) == 0 }

// DaysSince returns the number of calendar days from o to d. Negative when d
// is before o.
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()) / (24 * time.Hour))
}

// AddDays returns the date n days after d (before, when n is negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths returns the date n months after d, keeping d's day-of-month but
// clamping it to the last day of the target month when it does not exist
// there. The clamp is computed from d's own day, never from a previously
// clamped result, so repeated calls anchored on the same date do not drift.
func (d Date) AddMonths(n int) Date {
	idx := d.MonthIndex() + n
	year := idx / 12
	month := time.Month(idx%12 + 1)
	if idx < 0 && idx%12 != 0 {
		year--
		month = time.Month(idx%12 + 13)
	}
	day := d.day
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return Date{year: year, month: month, day: day}
}

// AddYears returns the date n years after d with the same month and day.
// A February 29 anchor lands on February 28 in non-leap target years.
func (d Date) AddYears(n int) Date {
	year := d.year + n
	day := d.day
	if last := DaysInMonth(year, d.month); day > last {
		day = last
	}
	return Date{year: year, month: d.month, day: day}
}

// MonthIndex returns the zero-based count of months since year 0, used for
// monthly cadence congruence math.
func (d Date) MonthIndex() int {
	return d.year*12 + int(d.month) - 1
}

// DaysInMonth returns the number of days in the given month of the given year.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
