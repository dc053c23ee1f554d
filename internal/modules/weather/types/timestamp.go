package types

import (
	"fmt"
	"time"
)

// TimestampLayout is the text form written for new readings: local wall
// clock, fixed microsecond precision, no offset. Fixed width keeps string
// order equal to time order.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// parseLayouts are tried in order for offset-less values.
var parseLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders t in loc using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp parses stored timestamp text. Values carrying an offset are
// honoured; values without one are read as wall clock in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	var firstErr error
	for _, layout := range parseLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, firstErr)
}
