package planner

import (
	"github.com/noah-isme/weekplan-api/internal/models"
)

// Grid is the index-addressed form of a schedule: Cells[slot][day].
type Grid struct {
	Days  []string
	Times []string
	Cells [][]models.Activity
}

// NewGrid allocates a grid filled with Free Time.
func NewGrid(days, times []string) *Grid {
	g := &Grid{
		Days:  append([]string(nil), days...),
		Times: append([]string(nil), times...),
		Cells: make([][]models.Activity, len(times)),
	}
	for slot := range g.Cells {
		row := make([]models.Activity, len(days))
		for day := range row {
			row[day] = models.FreeTime()
		}
		g.Cells[slot] = row
	}
	return g
}

// FromSchedule converts a wire grid into an arena. Missing cells become Free Time and
// days missing from Days are recovered from the first row.
func FromSchedule(schedule models.ScheduleGrid) *Grid {
	days := schedule.Days
	if len(days) == 0 && len(schedule.Rows) > 0 {
		for _, day := range Week {
			if _, ok := schedule.Rows[0].Activities[day]; ok {
				days = append(days, day)
			}
		}
	}
	times := make([]string, len(schedule.Rows))
	for i, row := range schedule.Rows {
		times[i] = row.Time
	}
	g := NewGrid(days, times)
	for slot, row := range schedule.Rows {
		for day, name := range g.Days {
			if activity, ok := row.Activities[name]; ok && activity.Content != "" {
				g.Cells[slot][day] = activity
			}
		}
	}
	return g
}

// Schedule converts the arena back into the wire shape with the given metadata.
func (g *Grid) Schedule(meta models.GridMetadata) models.ScheduleGrid {
	rows := make([]models.ScheduleRow, len(g.Times))
	for slot, label := range g.Times {
		activities := make(map[string]models.Activity, len(g.Days))
		for day, name := range g.Days {
			activities[name] = g.Cells[slot][day]
		}
		rows[slot] = models.ScheduleRow{Time: label, Activities: activities}
	}
	return models.ScheduleGrid{
		Days:     append([]string(nil), g.Days...),
		Rows:     rows,
		Metadata: meta,
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Days:  append([]string(nil), g.Days...),
		Times: append([]string(nil), g.Times...),
		Cells: make([][]models.Activity, len(g.Cells)),
	}
	for slot, row := range g.Cells {
		out.Cells[slot] = append([]models.Activity(nil), row...)
	}
	return out
}

// Swap exchanges two cells of the same day.
func (g *Grid) Swap(day, a, b int) {
	g.Cells[a][day], g.Cells[b][day] = g.Cells[b][day], g.Cells[a][day]
}

// Hour returns the hour of day for a slot, or -1 for an unparseable label.
func (g *Grid) Hour(slot int) int {
	hour, ok := LabelHour(g.Times[slot])
	if !ok {
		return -1
	}
	return hour
}

// DayIndex returns the column of a day name, or -1.
func (g *Grid) DayIndex(name string) int {
	for i, day := range g.Days {
		if day == name {
			return i
		}
	}
	return -1
}

// CloneSchedule deep-copies a wire grid so callers never alias an in-flight edit.
func CloneSchedule(schedule models.ScheduleGrid) models.ScheduleGrid {
	return FromSchedule(schedule).Schedule(cloneMetadata(schedule.Metadata))
}

func cloneMetadata(meta models.GridMetadata) models.GridMetadata {
	out := meta
	out.Constraints.WorkDays = append([]string(nil), meta.Constraints.WorkDays...)
	if meta.Statistics.ByCategory != nil {
		out.Statistics.ByCategory = make(map[string]int, len(meta.Statistics.ByCategory))
		for k, v := range meta.Statistics.ByCategory {
			out.Statistics.ByCategory[k] = v
		}
	}
	return out
}

// Statistics counts the hours spent per category across the week.
func Statistics(schedule models.ScheduleGrid) models.GridStatistics {
	stats := models.GridStatistics{ByCategory: map[string]int{}}
	for _, row := range schedule.Rows {
		for _, activity := range row.Activities {
			stats.ByCategory[activity.Category]++
			switch {
			case activity.IsFreeTime():
				stats.FreeHours++
			case activity.Category == models.CategorySleep:
				stats.SleepHours++
			case activity.Category == models.CategoryWork:
				stats.WorkHours++
			case activity.Category == models.CategoryStudy:
				stats.StudyHours++
			case activity.Category == models.CategoryExercise:
				stats.ExerciseHours++
			}
		}
	}
	return stats
}
