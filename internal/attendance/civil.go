package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CivilOffset is the fixed offset of the deployment's civil time from UTC.
// All attendance timestamps are wall-clock values at this offset, carried
// in time.Time values whose location is UTC.
const CivilOffset = 7 * time.Hour

// NowCivil returns the current civil local time.
func NowCivil() time.Time {
	return time.Now().UTC().Add(CivilOffset)
}

// ParseClientTime parses a client-supplied ISO-8601 timestamp. The value is
// trusted as already expressed in civil local time: any zone designator is
// stripped, not converted.
func ParseClientTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// DayBounds returns the inclusive start and end of the civil calendar day
// containing t.
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// atTimeOfDay returns the instant on t's day at the given HH:MM clock time.
func atTimeOfDay(t time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time of day %q: %w", hhmm, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}
