package util

import (
	"strconv"
	"time"
)

// ParseDate tries the formats raw report feeds actually ship: openFDA compact
// dates (20240115), ISO dates, RFC3339, and unix seconds. Returns (t, true) if
// any worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// QuarterStart truncates t to the first day of its calendar quarter
// (Jan 1, Apr 1, Jul 1, Oct 1) in UTC.
func QuarterStart(t time.Time) time.Time {
	t = t.UTC()
	qm := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), qm, 1, 0, 0, 0, 0, time.UTC)
}

// NextQuarter returns the start of the quarter following t's quarter.
func NextQuarter(t time.Time) time.Time {
	return QuarterStart(t).AddDate(0, 3, 0)
}

// QuartersBetween returns the number of whole quarters from a to b
// (both truncated to quarter starts). Negative if b precedes a.
func QuartersBetween(a, b time.Time) int {
	qa, qb := QuarterStart(a), QuarterStart(b)
	return (qb.Year()-qa.Year())*4 + (int(qb.Month())-int(qa.Month()))/3
}
