package planner

import (
	"strings"

	"github.com/noah-isme/weekplan-api/internal/models"
)

// EnergyProfile is a coarse classification of when a user is most alert.
type EnergyProfile string

const (
	ProfileMorning  EnergyProfile = "morning"
	ProfileEvening  EnergyProfile = "evening"
	ProfileBalanced EnergyProfile = "balanced"
)

type energyBand struct {
	from  float64
	to    float64
	score float64
}

// energyBands holds peak, moderate and low windows per profile. Windows wrap past midnight.
var energyBands = map[EnergyProfile][]energyBand{
	ProfileMorning: {
		{from: 6, to: 12, score: 0.9},
		{from: 12, to: 17, score: 0.6},
		{from: 17, to: 6, score: 0.3},
	},
	ProfileEvening: {
		{from: 17, to: 23, score: 0.9},
		{from: 11, to: 17, score: 0.6},
		{from: 23, to: 11, score: 0.3},
	},
	ProfileBalanced: {
		{from: 9, to: 13, score: 0.8},
		{from: 13, to: 18, score: 0.6},
		{from: 18, to: 9, score: 0.3},
	},
}

var lowFocusMarkers = []string{"meeting", "break", "email"}

// ProfileFor derives the energy profile from the user's day start and bed time.
func ProfileFor(c models.ScheduleConstraints) EnergyProfile {
	wakeMinutes, ok := ParseClock(c.StartTime)
	if !ok {
		return ProfileBalanced
	}
	bedMinutes, ok := ParseClock(c.BedTime)
	if !ok {
		return ProfileBalanced
	}
	wake := float64(wakeMinutes) / 60
	bed := float64(bedMinutes) / 60
	switch {
	case wake < 6:
		return ProfileMorning
	case bed >= 23 || bed < 4:
		return ProfileEvening
	case wake < 7:
		return ProfileMorning
	case wake > 8:
		return ProfileEvening
	default:
		return ProfileBalanced
	}
}

// EnergyAt scores an hour of day in [0,1] for the given profile.
func EnergyAt(profile EnergyProfile, hour int) float64 {
	bands, ok := energyBands[profile]
	if !ok {
		bands = energyBands[ProfileBalanced]
	}
	if hour < 0 {
		return 0
	}
	for _, band := range bands {
		if inWindow(float64(hour), band.from, band.to) {
			return band.score
		}
	}
	return 0
}

func isFocusCategory(a models.Activity) bool {
	return a.Category == models.CategoryWork || a.Category == models.CategoryStudy
}

func hasLowFocusMarker(a models.Activity) bool {
	content := strings.ToLower(a.Content)
	for _, marker := range lowFocusMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func isHighFocus(a models.Activity) bool {
	return isFocusCategory(a) && !hasLowFocusMarker(a)
}

func isLowFocus(a models.Activity) bool {
	return isFocusCategory(a) && hasLowFocusMarker(a)
}
