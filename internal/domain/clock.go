package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrBadClock = errors.New("invalid HH:MM time")

// ParseClock parses a "HH:MM" wall-clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: hour in %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: minute in %q", ErrBadClock, s)
	}
	return h*60 + m, nil
}

// DayMatches reports whether a task day denotes the given local date.
// Empty and the "today" sentinel always match; otherwise the day must equal
// the weekday name, case-insensitive.
func DayMatches(day string, local time.Time) bool {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" || day == DayToday {
		return true
	}
	return day == strings.ToLower(local.Weekday().String())
}

// LoadZone resolves an IANA timezone identifier, falling back to fallback
// (and then UTC) when the identifier is absent or invalid. The second return
// value is false when the fallback was used. Never returns an error: a bad
// user-entered zone must not stop evaluation.
func LoadZone(tz, fallback string) (*time.Location, bool) {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc, true
		}
	}
	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc, false
	}
	return time.UTC, false
}

// ClockAt combines a local date with minutes since midnight.
func ClockAt(base time.Time, mins int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), mins/60, mins%60, 0, 0, base.Location())
}

// FormatClock12h renders "HH:MM" (or a "HH:MM-HH:MM" range) in 12-hour form
// for human-facing message text. Unparseable input is returned unchanged.
func FormatClock12h(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, ":") {
		return s
	}
	if from, to, ok := strings.Cut(s, "-"); ok {
		return FormatClock12h(from) + " - " + FormatClock12h(to)
	}
	mins, err := ParseClock(s)
	if err != nil {
		return s
	}
	h := mins / 60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, mins%60, suffix)
}
