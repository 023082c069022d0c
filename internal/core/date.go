package core

import (
	"errors"
	"time"
)

// Date is a calendar day in a given location. The time of day is always
// midnight, so two Dates compare equal iff they name the same day.
type Date struct {
	t time.Time
}

var ErrInvalidDate = errors.New("invalid date")

// NewDate builds a Date. A nil location means UTC.
func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// DateOf truncates an instant to its calendar day in the instant's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d, t.Location())
}

// DateIn truncates an instant to its calendar day as seen from loc.
func DateIn(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(t.In(loc))
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Location() *time.Location { return d.t.Location() }

// AddDays moves by whole calendar days; DST transitions do not shift the result off midnight.
func (d Date) AddDays(n int) Date {
	y, m, day := d.t.Date()
	return NewDate(y, m, day+n, d.t.Location())
}

// Equal reports calendar-day equality. Locations are ignored: a Date is its
// year, month and day.
func (d Date) Equal(o Date) bool {
	y1, m1, d1 := d.t.Date()
	y2, m2, d2 := o.t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) Before(o Date) bool {
	return d.key() < o.key()
}

func (d Date) String() string {
	return d.t.Format(time.DateOnly)
}

func (d Date) key() int {
	y, m, day := d.t.Date()
	return y*10000 + int(m)*100 + day
}
