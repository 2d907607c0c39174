// Package utils holds small parsing helpers shared by the providers.
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout used for every date the user types.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01-02-06",      // finviz
	"Jan 02 '06",    // finviz insider table
	"Jan-02-06",     // finviz news and ratings
	"20060102",
}

// ParseDate parses s with the first matching known layout. Results are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// FromUnix converts epoch seconds or milliseconds to a UTC time.
// Values above 1e12 are taken to be milliseconds.
func FromUnix(v int64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// FormatDate formats t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateRange resolves optional start/end strings. A missing end is today and a
// missing start is end minus lookback. Start must not be after end.
func DateRange(start, end string, lookback time.Duration) (time.Time, time.Time, error) {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	if end != "" {
		t, err := ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	from := to.Add(-lookback)
	if start != "" {
		t, err := ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is after end %s", FormatDate(from), FormatDate(to))
	}
	return from, to, nil
}

// InRange reports whether t lies in [from, to], ignoring zero bounds.
func InRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}

// ParseNumber parses vendor-formatted numbers: thousands separators, a
// trailing percent sign, K/M/B/T suffixes and placeholders ("-", "N/A")
// which yield 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "none") {
		return 0
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'B':
		mult = 1e9
	case 'T':
		mult = 1e12
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

// ParseInt parses a decimal integer, returning def for empty or malformed input.
func ParseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
