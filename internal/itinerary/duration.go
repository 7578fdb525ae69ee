package itinerary

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04"

// ParseClock parses a 24-hour HH:MM value and returns minutes since midnight.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ValidClock reports whether s is empty or a well-formed HH:MM time.
func ValidClock(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := ParseClock(s)
	return ok
}

// ComputeDuration formats the time between two clock values. An end before
// the start spans midnight. Missing or unparseable input yields "".
//
//	ComputeDuration("09:00", "11:30") == "2 hours 30 minutes"
//	ComputeDuration("23:00", "01:00") == "2 hours"
//	ComputeDuration("10:00", "10:00") == "0 minutes"
func ComputeDuration(timeStart, timeEnd string) string {
	start, ok := ParseClock(timeStart)
	if !ok {
		return ""
	}
	end, ok := ParseClock(timeEnd)
	if !ok {
		return ""
	}
	minutes := end - start
	if minutes < 0 {
		minutes += 24 * 60
	}
	return formatMinutes(minutes)
}

func formatMinutes(total int) string {
	h, m := total/60, total%60
	switch {
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(m, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
