package utils

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseDate accepts either a calendar date (YYYY-MM-DD) or an RFC 3339
// timestamp. Calendar dates are interpreted in loc and reported via dateOnly.
func ParseDate(value string, loc *time.Location) (t time.Time, isDateOnly bool, err error) {
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(dateOnly, value, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
}

// DateRange is an inclusive [Start, End] interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange returns ok=false when either bound is empty; the range only
// applies when both are given. A calendar-date end covers that whole day.
func ParseDateRange(startValue, endValue string, loc *time.Location) (DateRange, bool, error) {
	if startValue == "" || endValue == "" {
		return DateRange{}, false, nil
	}

	start, _, err := ParseDate(startValue, loc)
	if err != nil {
		return DateRange{}, false, fmt.Errorf("startDate: %w", err)
	}

	end, endDateOnly, err := ParseDate(endValue, loc)
	if err != nil {
		return DateRange{}, false, fmt.Errorf("endDate: %w", err)
	}
	if endDateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	if end.Before(start) {
		return DateRange{}, false, fmt.Errorf("endDate %q is before startDate %q", endValue, startValue)
	}
	return DateRange{Start: start, End: end}, true, nil
}
