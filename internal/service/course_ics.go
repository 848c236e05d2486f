package service

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/weekplan-api/internal/models"
)

var (
	icsLayouts = []string{"20060102T150405Z", "20060102T150405", "20060102"}

	byDayCodes = map[string]time.Weekday{
		"MO": time.Monday,
		"TU": time.Tuesday,
		"WE": time.Wednesday,
		"TH": time.Thursday,
		"FR": time.Friday,
		"SA": time.Saturday,
		"SU": time.Sunday,
	}

	courseCodePattern = regexp.MustCompile(`^[A-Za-z]{2,6}\s?-?\d{2,4}[A-Za-z]?$`)
)

// parseCourseCalendar groups VEVENTs by course code. Events without a summary or a
// usable start and end are counted as skipped.
func parseCourseCalendar(data []byte, loc *time.Location) ([]models.Course, int, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}

	var (
		courses []models.Course
		index   = map[string]int{}
		skipped int
	)
	for _, evt := range cal.Events() {
		summary := evt.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			skipped++
			continue
		}
		start, written, err := eventTime(evt, ics.ComponentPropertyDtStart, loc)
		if err != nil {
			skipped++
			continue
		}
		end, _, err := eventTime(evt, ics.ComponentPropertyDtEnd, loc)
		if err != nil || !end.After(start) {
			skipped++
			continue
		}

		code, name := splitSummary(summary.Value)
		i, ok := index[code]
		if !ok {
			course := models.Course{CourseCode: code, Name: name, Schedule: models.RecurringSchedule{}}
			if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
				course.Location = splitLocation(prop.Value)
			}
			courses = append(courses, course)
			i = len(courses) - 1
			index[code] = i
		}
		for _, day := range eventDays(evt, start, dayShift(written, start)) {
			courses[i].Schedule = addSlot(courses[i].Schedule, models.RecurringTimeSlot{
				DayOfWeek: day,
				StartTime: start.Format("15:04"),
				EndTime:   end.Format("15:04"),
			})
		}
	}
	return courses, skipped, nil
}

// eventTime returns the property converted to loc and as written in its own zone.
func eventTime(evt *ics.VEvent, name ics.ComponentProperty, loc *time.Location) (time.Time, time.Time, error) {
	prop := evt.GetProperty(name)
	if prop == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("missing %s", name)
	}
	var tzid string
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			tzid = v[0]
		}
	}
	for _, layout := range icsLayouts {
		t, err := time.Parse(layout, prop.Value)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), t, nil
		}
		if tzid != "" {
			if zone, err := time.LoadLocation(tzid); err == nil {
				zoned := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, zone)
				return zoned.In(loc), zoned, nil
			}
		}
		// floating time
		return t, t, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unparseable %s %q", name, prop.Value)
}

// dayShift is how many calendar days converted lies after written, in their own zones.
func dayShift(written, converted time.Time) int {
	a := time.Date(written.Year(), written.Month(), written.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(converted.Year(), converted.Month(), converted.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// eventDays reads BYDAY from a weekly RRULE, falling back to the start's weekday. BYDAY
// is written in DTSTART's zone, so each day moves by shift once start is converted.
func eventDays(evt *ics.VEvent, start time.Time, shift int) []string {
	fallback := []string{start.Weekday().String()}
	rule := evt.GetProperty(ics.ComponentPropertyRrule)
	if rule == nil {
		return fallback
	}
	var (
		weekly bool
		days   []string
	)
	for _, part := range strings.Split(rule.Value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			weekly = strings.EqualFold(kv[1], "WEEKLY")
		case "BYDAY":
			for _, code := range strings.Split(kv[1], ",") {
				code = strings.ToUpper(strings.TrimSpace(code))
				if len(code) > 2 {
					code = code[len(code)-2:]
				}
				if day, ok := byDayCodes[code]; ok {
					days = append(days, time.Weekday(((int(day)+shift)%7+7)%7).String())
				}
			}
		}
	}
	if !weekly || len(days) == 0 {
		return fallback
	}
	return days
}

// splitSummary reads "CS101 - Intro to CS" or "CS101: Intro" as code and name.
func splitSummary(summary string) (string, string) {
	summary = strings.TrimSpace(summary)
	for _, sep := range []string{" - ", ": ", " | "} {
		if head, tail, ok := strings.Cut(summary, sep); ok && courseCodePattern.MatchString(strings.TrimSpace(head)) {
			return normalizeCourseCode(head), strings.TrimSpace(tail)
		}
	}
	if courseCodePattern.MatchString(summary) {
		return normalizeCourseCode(summary), summary
	}
	return strings.ToUpper(summary), summary
}

func normalizeCourseCode(code string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(code)))
}

// splitLocation treats a trailing token containing a digit as the room.
func splitLocation(raw string) models.CourseLocation {
	fields := strings.Fields(raw)
	if len(fields) > 1 && strings.ContainsAny(fields[len(fields)-1], "0123456789") {
		return models.CourseLocation{
			Building: strings.Join(fields[:len(fields)-1], " "),
			Room:     fields[len(fields)-1],
		}
	}
	return models.CourseLocation{Building: strings.TrimSpace(raw)}
}

func addSlot(schedule models.RecurringSchedule, slot models.RecurringTimeSlot) models.RecurringSchedule {
	for _, existing := range schedule {
		if existing == slot {
			return schedule
		}
	}
	return append(schedule, slot)
}
