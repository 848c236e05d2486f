package planner

import (
	"math"
	"time"

	"github.com/noah-isme/weekplan-api/internal/models"
)

// SourceSynthesizer tags grids produced by Synthesize.
const SourceSynthesizer = "synthesizer"

var mealAnchors = map[int]string{
	7:  "Breakfast",
	8:  "Breakfast",
	12: "Lunch",
	13: "Lunch",
	18: "Dinner",
	19: "Dinner",
}

var studyPreferences = map[models.StudyTimePreference]bool{
	models.StudyMorning:   true,
	models.StudyAfternoon: true,
	models.StudyEvening:   true,
	models.StudyNight:     true,
	models.StudyFlexible:  true,
}

// Normalize replaces every malformed planner field with its documented default.
// Work times that do not parse are cleared, which disables work classification.
func Normalize(c models.ScheduleConstraints) models.ScheduleConstraints {
	out := c
	if day := NormalizeDay(c.StartDay); day != "" {
		out.StartDay = day
	} else {
		out.StartDay = defaultStartDay
	}
	if _, ok := ParseClock(c.StartTime); !ok {
		out.StartTime = defaultStartTime
	}
	if _, ok := ParseClock(c.BedTime); !ok {
		out.BedTime = defaultBedTime
	}
	if math.IsNaN(c.DesiredSleepHours) || c.DesiredSleepHours < minSleep || c.DesiredSleepHours > maxSleep {
		out.DesiredSleepHours = defaultSleep
	}

	out.WorkDays = make([]string, 0, len(c.WorkDays))
	seen := make(map[string]bool, len(c.WorkDays))
	for _, raw := range c.WorkDays {
		day := NormalizeDay(raw)
		if day == "" || seen[day] {
			continue
		}
		seen[day] = true
		out.WorkDays = append(out.WorkDays, day)
	}

	_, startOK := ParseClock(c.WorkStartTime)
	_, endOK := ParseClock(c.WorkEndTime)
	if !startOK || !endOK {
		out.WorkStartTime = ""
		out.WorkEndTime = ""
	}
	if !studyPreferences[c.StudyTimePreference] {
		out.StudyTimePreference = models.StudyFlexible
	}
	return out
}

// Synthesize builds the initial weekly grid. It never fails: malformed input falls back to
// defaults and an internal fault yields the minimal grid.
func Synthesize(c models.ScheduleConstraints) models.ScheduleGrid {
	return SynthesizeAt(c, time.Now().UTC())
}

// SynthesizeAt is Synthesize with an explicit generation timestamp.
func SynthesizeAt(c models.ScheduleConstraints, at time.Time) (grid models.ScheduleGrid) {
	defer func() {
		if r := recover(); r != nil {
			grid = MinimalGrid(c, at)
		}
	}()

	n := Normalize(c)
	startMinutes, _ := ParseClock(n.StartTime)
	bedMinutes, _ := ParseClock(n.BedTime)
	bed := float64(bedMinutes) / 60
	wake := math.Mod(bed+n.DesiredSleepHours, hoursPerDay)

	workDays := make(map[string]bool, len(n.WorkDays))
	for _, day := range n.WorkDays {
		workDays[day] = true
	}
	workFrom, workTo, hasWork := workWindow(n)

	g := NewGrid(RotateDays(n.StartDay), hourLabels(startMinutes/60))
	if len(g.Days) == 0 {
		return MinimalGrid(c, at)
	}
	for slot := range g.Times {
		hour := g.Hour(slot)
		h := float64(hour)
		for day, name := range g.Days {
			switch {
			case inWindow(h, bed, wake):
				g.Cells[slot][day] = models.Activity{Content: models.ContentSleep, Category: models.CategorySleep}
			case hasWork && workDays[name] && inWindow(h, workFrom, workTo):
				g.Cells[slot][day] = models.Activity{Content: "Work", Category: models.CategoryWork}
			case mealAnchors[hour] != "":
				g.Cells[slot][day] = models.Activity{Content: mealAnchors[hour], Category: models.CategoryMeal}
			}
		}
	}
	return g.Schedule(models.GridMetadata{
		GeneratedAt: at,
		Source:      SourceSynthesizer,
		Constraints: n,
	})
}

// MinimalGrid is the 4-slot all Free Time grid returned when synthesis cannot complete.
func MinimalGrid(c models.ScheduleConstraints, at time.Time) models.ScheduleGrid {
	labels := hourLabels(8)[:4]
	return NewGrid(Week, labels).Schedule(models.GridMetadata{
		GeneratedAt: at,
		Source:      SourceSynthesizer,
		Constraints: c,
	})
}

func workWindow(c models.ScheduleConstraints) (float64, float64, bool) {
	from, ok := ParseClock(c.WorkStartTime)
	if !ok {
		return 0, 0, false
	}
	to, ok := ParseClock(c.WorkEndTime)
	if !ok || from == to {
		return 0, 0, false
	}
	return float64(from) / 60, float64(to) / 60, true
}
