package models

import (
	"strings"
	"time"
)

// DayLayout is the key format of a sprint's day buckets.
const DayLayout = "2006-01-02"

// Jira renders timestamps with a numeric offset and no colon, e.g. 2024-01-02T09:30:00.000+0100.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04",
	DayLayout,
}

// DateOf drops the time of day, keeping the calendar date in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a calendar date as a bucket key.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDate parses a tracker date or timestamp into a calendar date.
// Empty values, the literal "None" and "<null>" and anything unparseable report ok=false.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "none") || value == "<null>" || value == "null" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return DateOf(parsed), true
		}
	}
	return time.Time{}, false
}

// ParseOptionalDate is ParseDate returning nil for an absent date.
func ParseOptionalDate(raw string) *time.Time {
	parsed, ok := ParseDate(raw)
	if !ok {
		return nil
	}
	return &parsed
}
