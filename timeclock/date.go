package timeclock

import (
	"time"
)

// =============================================================================
// DATE - Calendar day (UTC), the grouping key for events and sessions
// =============================================================================

// Date is a calendar day in UTC. Events are grouped by (staff, Date) for
// validation and reconstruction, and payroll aggregates worked minutes per
// Date before splitting regular/overtime hours.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day a timestamp falls on, in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, Invalidf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC at the start of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of the day.
func (d Date) EndOfDay() time.Time {
	return d.Time().AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether t falls on this calendar day.
func (d Date) Contains(t time.Time) bool {
	return DateOf(t) == d
}

func (d Date) AddDays(n int) Date       { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) Before(other Date) bool   { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool    { return d.Time().After(other.Time()) }
func (d Date) Equal(other Date) bool    { return d == other }
func (d Date) IsZero() bool             { return d == Date{} }
func (d Date) String() string           { return d.Time().Format("2006-01-02") }

// DatesBetween returns every day in [from, to] inclusive, swapping the bounds
// if they arrive reversed.
func DatesBetween(from, to Date) []Date {
	if to.Before(from) {
		from, to = to, from
	}
	var days []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
