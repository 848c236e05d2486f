package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	hoursPerDay      = 24
	defaultStartTime = "08:00"
	defaultBedTime   = "22:00"
	defaultStartDay  = "Monday"
	defaultSleep     = 8.0
	minSleep         = 4.0
	maxSleep         = 12.0
)

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Week is the canonical day order before rotation.
var Week = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseClock parses a 24h HH:MM string into minutes after midnight.
func ParseClock(raw string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return h*60 + minute, true
}

// HourLabel renders an hour of day as a slot label, e.g. 13 -> "1:00 PM".
func HourLabel(hour int) string {
	hour = ((hour % hoursPerDay) + hoursPerDay) % hoursPerDay
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, suffix)
}

// LabelHour recovers the hour of day from a slot label. Both "1:00 PM" and "13:00" are accepted.
func LabelHour(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if minutes, ok := ParseClock(label); ok {
		return minutes / 60, true
	}
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0, false
	}
	clock := strings.SplitN(parts[0], ":", 2)
	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	switch strings.ToUpper(parts[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, false
	}
	return hour, true
}

// NormalizeDay returns the canonical day name, or "" when unknown.
func NormalizeDay(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, day := range Week {
		if strings.EqualFold(day, raw) || (len(raw) >= 3 && strings.EqualFold(day[:3], raw)) {
			return day
		}
	}
	return ""
}

// RotateDays returns the week starting at start.
func RotateDays(start string) []string {
	offset := 0
	for i, day := range Week {
		if day == start {
			offset = i
			break
		}
	}
	days := make([]string, 0, len(Week))
	for i := range Week {
		days = append(days, Week[(offset+i)%len(Week)])
	}
	return days
}

// hourLabels returns the 24 labels starting at startHour.
func hourLabels(startHour int) []string {
	labels := make([]string, hoursPerDay)
	for i := 0; i < hoursPerDay; i++ {
		labels[i] = HourLabel(startHour + i)
	}
	return labels
}

// inWindow reports whether hour lies in [from, to), wrapping across midnight when from > to.
func inWindow(hour, from, to float64) bool {
	if from == to {
		return false
	}
	if from < to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}
