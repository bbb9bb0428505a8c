package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateKeyLayout = "02-01-2006"
	monthLayout   = "2006-01"
)

var (
	// ErrInvalidDateKey indicates that a raw value is not a DD-MM-YYYY calendar day.
	ErrInvalidDateKey = errors.New("calendar: invalid date key")
	// ErrInvalidMonth indicates that a raw value is not a YYYY-MM month.
	ErrInvalidMonth = errors.New("calendar: invalid month")
	// ErrInvalidWeekStart indicates an unknown week-start name.
	ErrInvalidWeekStart = errors.New("calendar: invalid week start")
)

// Date is a calendar day without a time-of-day component.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the calendar day for the provided components. Out-of-range
// components roll over the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar day of t in its own location.
func FromTime(t time.Time) Date {
	year, month, day := t.Date()
	return Date{year: year, month: month, day: day}
}

// Today returns the current calendar day according to clock.
func Today(clock func() time.Time) Date {
	if clock == nil {
		clock = time.Now
	}
	return FromTime(clock())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.year
}

// Month returns the calendar month.
func (d Date) Month() time.Month {
	return d.month
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.day
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Key returns the canonical DD-MM-YYYY identity of the day.
func (d Date) Key() DateKey {
	return DateKey(fmt.Sprintf("%02d-%02d-%04d", d.day, int(d.month), d.year))
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// DateKey is the stable DD-MM-YYYY string identity of a calendar day.
type DateKey string

// String returns the underlying key.
func (k DateKey) String() string {
	return string(k)
}

// Date parses the key back into a calendar day.
func (k DateKey) Date() (Date, error) {
	return ParseDateKey(string(k))
}

// ParseDateKey accepts exactly DD-MM-YYYY naming a real calendar day.
func ParseDateKey(rawInput string) (Date, error) {
	trimmed := strings.TrimSpace(rawInput)
	parsed, err := time.Parse(dateKeyLayout, trimmed)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, rawInput)
	}
	return FromTime(parsed), nil
}

// ParseMonth accepts YYYY-MM and returns the first day of that month.
func ParseMonth(rawInput string) (Date, error) {
	parsed, err := time.Parse(monthLayout, strings.TrimSpace(rawInput))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidMonth, rawInput)
	}
	return FromTime(parsed), nil
}

// ParseWeekStart converts an English weekday name into a time.Weekday. An
// empty value selects Sunday.
func ParseWeekStart(rawInput string) (time.Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawInput))
	if normalized == "" {
		return time.Sunday, nil
	}
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		name := strings.ToLower(weekday.String())
		if normalized == name || normalized == name[:3] {
			return weekday, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekStart, rawInput)
}
