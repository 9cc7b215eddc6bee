package utils

import "time"

// TimeNowUTC returns the current time in UTC truncated to whole seconds.
func TimeNowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// StartOfDayUTC returns midnight UTC of the day t falls on.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDayUTC parses a YYYY-MM-DD date as midnight UTC.
func ParseDayUTC(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
