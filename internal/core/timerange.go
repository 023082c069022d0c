package core

import (
	"errors"
	"fmt"
	"time"
)

// Symbolic periods understood by ResolveTimeRange.
const (
	PeriodToday     = "today"
	PeriodThisWeek  = "this-week"
	PeriodThisMonth = "this-month"
	PeriodLastMonth = "last-month"
	PeriodThisYear  = "this-year"
)

var ErrUnknownPeriod = errors.New("unknown period")

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Equal compares instants, not representations.
func (r TimeRange) Equal(o TimeRange) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// ResolveTimeRange turns a symbolic period into concrete bounds in now's location.
func ResolveTimeRange(period string, now time.Time) (TimeRange, error) {
	loc := now.Location()
	y, m, d := now.Date()

	switch period {
	case PeriodToday:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return TimeRange{Start: start, End: time.Date(y, m, d+1, 0, 0, 0, 0, loc)}, nil
	case PeriodThisWeek:
		monday := MondayOf(DateOf(now))
		return TimeRange{Start: monday.Time(), End: monday.AddDays(7).Time()}, nil
	case PeriodThisMonth:
		return TimeRange{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m+1, 1, 0, 0, 0, 0, loc),
		}, nil
	case PeriodLastMonth:
		return TimeRange{
			Start: time.Date(y, m-1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m, 1, 0, 0, 0, 0, loc),
		}, nil
	case PeriodThisYear:
		return TimeRange{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc),
		}, nil
	default:
		return TimeRange{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
}

// Resolver reads the clock on every call. Results are never cached: two
// widgets resolving the same period in one pass get equal, independent ranges.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

func NewResolver(loc *time.Location) Resolver {
	return Resolver{Now: time.Now, Location: loc}
}

func (r Resolver) Resolve(period string) (TimeRange, error) {
	return ResolveTimeRange(period, r.now())
}

// Today is the current calendar day in the resolver's location.
func (r Resolver) Today() Date {
	return DateOf(r.now())
}

func (r Resolver) now() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now()
	if r.Location != nil {
		t = t.In(r.Location)
	}
	return t
}
