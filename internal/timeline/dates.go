package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Sentinel date strings meaning "no usable date".
const (
	SentinelNaT     = "NaT"
	SentinelUnknown = "Unknown"
)

// midnightSuffix is the fixed time suffix exported by the case system.
const midnightSuffix = " 00:00:00"

const secondsPerDay = 24 * 60 * 60

// HeaderDateLayout is the display layout of date headers ("01 Jan 2024").
const HeaderDateLayout = "02 Jan 2006"

// dateLayouts are the accepted calendar date forms, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Normalize parses a raw decision date into a calendar date at UTC midnight.
// It reports false for empty input, the NaT/Unknown sentinels and anything
// that does not parse. It never fails.
func Normalize(raw string) (time.Time, bool) {
	if raw == "" || raw == SentinelNaT || raw == SentinelUnknown {
		return time.Time{}, false
	}

	clean := raw
	if strings.HasSuffix(raw, midnightSuffix) && len(raw) >= 10 {
		clean = raw[:10]
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, clean)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// IsValid reports whether raw normalizes to a calendar date.
func IsValid(raw string) bool {
	_, ok := Normalize(raw)
	return ok
}

// DaysBetween returns the whole calendar days from a to b, anchored to UTC
// midnight so zone offsets never shift the count.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / secondsPerDay)
}

// DayLabel formats an elapsed day count: "1 day", otherwise "n days".
func DayLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatDate renders raw as a header label such as "01 Jan 2024", or "" when
// raw is not a valid date.
func FormatDate(raw string) string {
	t, ok := Normalize(raw)
	if !ok {
		return ""
	}
	return t.Format(HeaderDateLayout)
}
