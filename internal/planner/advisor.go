package planner

import (
	"github.com/noah-isme/weekplan-api/internal/models"
)

// SourceAdvisor tags grids filled by the free-time advisor.
const SourceAdvisor = "advisor"

type slotContext struct {
	hour    int
	workDay bool
	prev    string
	next    string
}

type suggestionRule struct {
	from int
	to   int // exclusive
	pick func(slotContext) models.Activity
}

func activity(content, category string) func(slotContext) models.Activity {
	a := models.Activity{Content: content, Category: category}
	return func(slotContext) models.Activity { return a }
}

// suggestionRules is evaluated by ascending hour band; the first band containing the hour wins.
var suggestionRules = []suggestionRule{
	{from: 5, to: 8, pick: func(ctx slotContext) models.Activity {
		if ctx.next == models.CategoryWork {
			return models.Activity{Content: "Morning Planning", Category: models.CategoryPlanning}
		}
		return models.Activity{Content: "Morning Exercise", Category: models.CategoryExercise}
	}},
	{from: 8, to: 12, pick: func(ctx slotContext) models.Activity {
		if ctx.workDay {
			return models.Activity{Content: "Focus Work", Category: models.CategoryWork}
		}
		return models.Activity{Content: "Learning", Category: models.CategoryStudy}
	}},
	{from: 12, to: 14, pick: activity("Lunch", models.CategoryMeal)},
	{from: 14, to: 16, pick: func(ctx slotContext) models.Activity {
		switch {
		case ctx.prev == models.CategoryWork && ctx.next == models.CategoryWork:
			return models.Activity{Content: "Short Break", Category: models.CategoryPersonal}
		case ctx.workDay:
			return models.Activity{Content: "Admin Tasks", Category: models.CategoryWork}
		default:
			return models.Activity{Content: "Reading", Category: models.CategoryPersonal}
		}
	}},
	{from: 16, to: 18, pick: func(ctx slotContext) models.Activity {
		if ctx.workDay && ctx.prev == models.CategoryWork {
			return models.Activity{Content: "Work Wrap-up", Category: models.CategoryWork}
		}
		return models.Activity{Content: "Exercise", Category: models.CategoryExercise}
	}},
	{from: 18, to: 20, pick: activity("Dinner", models.CategoryMeal)},
	{from: 20, to: 23, pick: activity("Relaxation", models.CategoryPersonal)},
}

var flexibleTime = models.Activity{Content: "Flexible Time", Category: models.CategoryPersonal}

func suggestFor(ctx slotContext) models.Activity {
	for _, rule := range suggestionRules {
		if ctx.hour >= rule.from && ctx.hour < rule.to {
			return rule.pick(ctx)
		}
	}
	return flexibleTime
}

// Suggest replaces every Free Time cell with a context-sensitive activity. Context is read
// from the input snapshot, so cells rewritten in this pass never influence each other.
func Suggest(schedule models.ScheduleGrid, c models.ScheduleConstraints) (out models.ScheduleGrid) {
	defer func() {
		if r := recover(); r != nil {
			out = CloneSchedule(schedule)
		}
	}()

	n := Normalize(c)
	workDays := make(map[string]bool, len(n.WorkDays))
	for _, day := range n.WorkDays {
		workDays[day] = true
	}

	snapshot := FromSchedule(schedule)
	result := snapshot.Clone()
	for slot := range snapshot.Times {
		for day, name := range snapshot.Days {
			if !snapshot.Cells[slot][day].IsFreeTime() {
				continue
			}
			ctx := slotContext{hour: snapshot.Hour(slot), workDay: workDays[name]}
			if slot > 0 {
				ctx.prev = snapshot.Cells[slot-1][day].Category
			}
			if slot+1 < len(snapshot.Times) {
				ctx.next = snapshot.Cells[slot+1][day].Category
			}
			result.Cells[slot][day] = suggestFor(ctx)
		}
	}

	meta := cloneMetadata(schedule.Metadata)
	meta.Source = SourceAdvisor
	return result.Schedule(meta)
}
