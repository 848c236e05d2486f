package academic

import (
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
)

// meeting is a parsed recurring slot in minutes after midnight.
type meeting struct {
	day   string
	start int
	end   int
}

// meetings parses a course's recurring slots, dropping entries whose day or times do not
// parse or whose end is not after their start.
func meetings(course models.Course) []meeting {
	out := make([]meeting, 0, len(course.Schedule))
	for _, slot := range course.Schedule {
		day := planner.NormalizeDay(slot.DayOfWeek)
		start, ok := planner.ParseClock(slot.StartTime)
		if day == "" || !ok {
			continue
		}
		end, ok := planner.ParseClock(slot.EndTime)
		if !ok || end <= start {
			continue
		}
		out = append(out, meeting{day: day, start: start, end: end})
	}
	return out
}

func overlapMinutes(a, b meeting) int {
	if a.day != b.day {
		return 0
	}
	start := max(a.start, b.start)
	end := min(a.end, b.end)
	if end <= start {
		return 0
	}
	return end - start
}

func cloneCourse(course models.Course) models.Course {
	out := course
	out.Schedule = append(models.RecurringSchedule(nil), course.Schedule...)
	out.Metadata.Prerequisites = append([]string(nil), course.Metadata.Prerequisites...)
	return out
}
