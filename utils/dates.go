package utils

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalDateLayout is the single date format used internally for
// comparison, storage, and display.
const CanonicalDateLayout = "2006-01-02"

// CompactDateLayout is the 8-digit date format the remote service speaks.
const CompactDateLayout = "20060102"

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// DateInfo is the current calendar date in a target zone.
type DateInfo struct {
	Date    string
	Weekday string
}

// CurrentDateInfo computes today's date and weekday name in the given zone.
// The zone-aware calendar matters here: the process clock may sit in a
// different zone than the service, and the date must flip at the service's
// midnight, not ours.
func CurrentDateInfo(loc *time.Location) DateInfo {
	now := time.Now().In(loc)
	return DateInfo{
		Date:    now.Format(CanonicalDateLayout),
		Weekday: now.Weekday().String(),
	}
}

// ParseFlexible converts a free-form date expression into canonical form
// relative to now in the given zone. Canonical input passes through, relative
// words and weekday names are resolved, and anything unrecognized is returned
// unchanged so the remote service's own validation can reject it.
func ParseFlexible(input string, loc *time.Location) string {
	return ParseFlexibleAt(input, time.Now().In(loc))
}

// ParseFlexibleAt is ParseFlexible with an explicit "now" instant.
func ParseFlexibleAt(input string, now time.Time) string {
	s := strings.ToLower(strings.TrimSpace(input))

	if _, err := time.Parse(CanonicalDateLayout, s); err == nil {
		return s
	}

	switch s {
	case "today":
		return now.Format(CanonicalDateLayout)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(CanonicalDateLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(CanonicalDateLayout)
	}

	// Weekday names always resolve to the next occurrence strictly after
	// today; "thursday" said on a Thursday means next week.
	name := strings.TrimSpace(strings.TrimPrefix(s, "next "))
	if wd, ok := weekdayNames[name]; ok {
		days := (int(wd) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format(CanonicalDateLayout)
	}

	return input
}

// NormalizeRemoteDate parses the remote service's verbose date strings, e.g.
// "Tue, Jan 13, 2026" or "january 13 2026", into canonical form. Returns ""
// for unparseable input; this path formats already-trusted remote output and
// must never fail a response.
func NormalizeRemoteDate(input string) string {
	cleaned := strings.ReplaceAll(input, ",", " ")
	fields := strings.Fields(cleaned)
	if len(fields) < 3 {
		return ""
	}

	// Optional leading weekday, abbreviated or full, with or without a dot.
	first := strings.ToLower(strings.TrimSuffix(fields[0], "."))
	if _, ok := weekdayNames[first]; ok {
		fields = fields[1:]
	}
	if len(fields) != 3 {
		return ""
	}

	month := fields[0]
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
	candidate := month + " " + fields[1] + " " + fields[2]
	for _, layout := range []string{"January 2 2006", "Jan 2 2006"} {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format(CanonicalDateLayout)
		}
	}
	return ""
}

// CompactDate converts a canonical date to the remote 8-digit form, or ""
// when the input is not canonical.
func CompactDate(canonical string) string {
	t, err := time.Parse(CanonicalDateLayout, canonical)
	if err != nil {
		return ""
	}
	return t.Format(CompactDateLayout)
}

// FromCompactDate converts a remote 8-digit date to canonical form, or ""
// when malformed.
func FromCompactDate(compact string) string {
	t, err := time.Parse(CompactDateLayout, compact)
	if err != nil {
		return ""
	}
	return t.Format(CanonicalDateLayout)
}

// ParseClock accepts "15:04", "3:04 PM", and "3:04PM" clock strings.
func ParseClock(clock string) (time.Time, error) {
	s := strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized clock time %q", clock)
}

// SecondsSinceMidnight converts a clock string to the remote wire encoding.
func SecondsSinceMidnight(clock string) (int, error) {
	t, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// ClockFromSeconds converts seconds-since-midnight to an HH:MM clock string.
func ClockFromSeconds(secs int) string {
	if secs < 0 {
		return ""
	}
	secs %= 24 * 3600
	return fmt.Sprintf("%02d:%02d", secs/3600, (secs%3600)/60)
}
