package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 hours ago", "3 days ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute|second)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 hours ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	// 1: Value (e.g., "2")
	// 2: Unit (e.g., "year" or "month")
	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch unit {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * 24 * time.Hour), nil
	case "day":
		return now.Add(time.Duration(-value) * 24 * time.Hour), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(-value) * time.Minute), nil
	default:
		return now.Add(time.Duration(-value) * time.Second), nil
	}
}

// resolutionRe captures "N [units]", e.g. "5 seconds", "1 minute".
var resolutionRe = regexp.MustCompile(`^(\d+)\s*(second|minute|hour|day|week)s?$`)

// ParseResolution converts strings like "5s", "1 minute" or "3600" into seconds.
// It first tries Go's built-in time.ParseDuration, then human-readable units,
// then a bare number of seconds.
func ParseResolution(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty resolution")
	}

	if duration, err := time.ParseDuration(s); err == nil {
		if duration < time.Second || duration%time.Second != 0 {
			return 0, fmt.Errorf("resolution must be a positive whole number of seconds: %s", s)
		}
		return int64(duration / time.Second), nil
	}

	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("resolution must be positive: %s", s)
		}
		return seconds, nil
	}

	matches := resolutionRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid resolution format: %s", s)
	}
	value, _ := strconv.ParseInt(matches[1], 10, 64)
	if value == 0 {
		return 0, errors.New("zero resolution is not useful")
	}

	switch matches[2] {
	case "minute":
		return value * 60, nil
	case "hour":
		return value * 3600, nil
	case "day":
		return value * 86400, nil
	case "week":
		return value * 7 * 86400, nil
	default:
		return value, nil
	}
}

// ParseTimestamp converts unix seconds, an RFC3339 date or "N [units] ago" into unix seconds.
func ParseTimestamp(s string, now time.Time) (int64, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return seconds, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t.Unix(), nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp '%s'. Expected unix seconds, ISO8601 or 'N [units] ago'", s)
	}
	return t.Unix(), nil
}

// FormatTimestamp renders a timestamp in UTC with a precision matching timeResolution.
func FormatTimestamp(timestamp, timeResolution int64) string {
	const day = 24 * 60 * 60
	var layout string
	switch {
	case timeResolution < 60:
		layout = "15:04:05 02/01/2006"
	case timeResolution%day != 0:
		layout = "15:04 02/01/2006"
	default:
		layout = "02/01/2006"
	}
	return time.Unix(timestamp, 0).UTC().Format(layout)
}
