package model

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// DateRange is an inclusive time window. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ParseDateRange builds a range from optional start and end strings. Both accept
// RFC 3339 or YYYY-MM-DD; a date-only end covers the whole of that UTC day.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := parseDate(s, false)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid startDate %q", ErrInvalidInput, s)
		}
		r.From = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := parseDate(s, true)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid endDate %q", ErrInvalidInput, s)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return DateRange{}, fmt.Errorf("%w: startDate is after endDate", ErrInvalidInput)
	}
	return r, nil
}

func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}
