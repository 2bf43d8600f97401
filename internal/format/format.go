// Package format renders timestamps for humans.
package format

import (
	"fmt"
	"strings"
	"time"
)

// UnknownDate is shown when no date is available.
const UnknownDate = "Unknown"

var timeNow = time.Now

// dateLayouts are tried in order when parsing a date string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a timestamp string as "Jan 2, 03:04 PM" in local time,
// adding the year ("Jan 2, 2006, 03:04 PM") when it is not the current year.
// An empty string yields UnknownDate. Strings that do not parse are returned
// unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownDate
	}
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return formatTime(t)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return UnknownDate
	}
	now := timeNow()
	local := t.In(now.Location())
	if local.Year() == now.Year() {
		return local.Format("Jan 2, 03:04 PM")
	}
	return local.Format("Jan 2, 2006, 03:04 PM")
}

// ParseDate parses the timestamp layouts release feeds use. Layouts without a
// zone are read in local time.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, timeNow().Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatRelativeTime returns a compact, human-friendly description of how long
// ago t occurred. Results never exceed ~8 characters.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	now := timeNow()

	// Future timestamps fall back to absolute dates.
	if t.After(now) {
		return formatAbsoluteTime(t, now)
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		minutes := int(diff / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("%dm ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff / time.Hour)
		return fmt.Sprintf("%dh ago", hours)
	case diff < 100*24*time.Hour:
		days := int(diff / (24 * time.Hour))
		return fmt.Sprintf("%dd ago", days)
	default:
		return formatAbsoluteTime(t, now)
	}
}

func formatAbsoluteTime(t, now time.Time) string {
	local := t.In(now.Location())
	if local.Year() == now.Year() {
		return local.Format("Jan 2")
	}
	return local.Format("Jan '06")
}
