package academic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/weekplan-api/internal/models"
)

const (
	// maxTransitionGap is the largest gap in minutes checked for building travel.
	maxTransitionGap = 15
	walkingSpeedMPH  = 3.0
	defaultDistance  = 0.4
)

// buildingDistances holds walking distances in miles keyed by the sorted lowercase pair.
var buildingDistances = map[[2]string]float64{
	{"engineering", "science"}:     0.3,
	{"library", "student center"}:  0.2,
	{"arts", "engineering"}:        0.8,
	{"arts", "science"}:            0.6,
	{"business", "engineering"}:    0.7,
	{"business", "library"}:        0.25,
	{"library", "science"}:         0.35,
	{"engineering", "library"}:     0.45,
	{"arts", "student center"}:     0.3,
	{"business", "student center"}: 0.2,
}

func buildingKey(a, b string) [2]string {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Distance returns the walking distance in miles between two buildings.
func Distance(a, b string) float64 {
	key := buildingKey(a, b)
	if key[0] == key[1] {
		return 0
	}
	if d, ok := buildingDistances[key]; ok {
		return d
	}
	return defaultDistance
}

// TravelMinutes estimates walking time between two buildings.
func TravelMinutes(a, b string) float64 {
	return Distance(a, b) / walkingSpeedMPH * 60
}

// DetectConflicts reports time, location and prerequisite problems in a course set.
// The input is never modified and the result is empty, not nil, when no issue exists.
func DetectConflicts(courses []models.Course) []models.CourseConflict {
	conflicts := make([]models.CourseConflict, 0)
	parsed := make([][]meeting, len(courses))
	for i, course := range courses {
		parsed[i] = meetings(course)
	}

	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			if conflict, ok := timeOverlap(courses[i], courses[j], parsed[i], parsed[j]); ok {
				conflicts = append(conflicts, conflict)
			}
			conflicts = append(conflicts, locationConflicts(courses[i], courses[j], parsed[i], parsed[j])...)
		}
	}
	return append(conflicts, missingPrerequisites(courses)...)
}

func timeOverlap(a, b models.Course, am, bm []meeting) (models.CourseConflict, bool) {
	total := 0
	var days []string
	seen := map[string]bool{}
	for _, x := range am {
		for _, y := range bm {
			minutes := overlapMinutes(x, y)
			if minutes == 0 {
				continue
			}
			total += minutes
			if !seen[x.day] {
				seen[x.day] = true
				days = append(days, x.day)
			}
		}
	}
	if total == 0 {
		return models.CourseConflict{}, false
	}
	return models.CourseConflict{
		Type:     models.ConflictTimeOverlap,
		Severity: models.SeverityCritical,
		Courses:  []models.Course{cloneCourse(a), cloneCourse(b)},
		Description: fmt.Sprintf("%s and %s overlap for %d minutes on %s",
			a.CourseCode, b.CourseCode, total, strings.Join(days, ", ")),
		Suggestions: []string{
			fmt.Sprintf("Look for another section of %s", a.CourseCode),
			fmt.Sprintf("Look for another section of %s", b.CourseCode),
			"Drop one of the overlapping courses",
		},
		AutoResolvable: false,
	}, true
}

func locationConflicts(a, b models.Course, am, bm []meeting) []models.CourseConflict {
	if !differentBuildings(a.Location, b.Location) {
		return nil
	}
	travel := TravelMinutes(a.Location.Building, b.Location.Building)
	var out []models.CourseConflict
	for _, x := range am {
		for _, y := range bm {
			if x.day != y.day {
				continue
			}
			if gap := y.start - x.end; gap >= 0 && gap <= maxTransitionGap && travel > float64(gap) {
				out = append(out, transitionConflict(a, b, x.day, gap, travel))
			}
			if gap := x.start - y.end; gap >= 0 && gap <= maxTransitionGap && travel > float64(gap) {
				out = append(out, transitionConflict(b, a, x.day, gap, travel))
			}
		}
	}
	return out
}

func differentBuildings(a, b models.CourseLocation) bool {
	if strings.TrimSpace(a.Building) == "" || strings.TrimSpace(b.Building) == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(a.Building), strings.TrimSpace(b.Building))
}

func transitionConflict(from, to models.Course, day string, gap int, travel float64) models.CourseConflict {
	return models.CourseConflict{
		Type:     models.ConflictLocation,
		Severity: models.SeverityMedium,
		Courses:  []models.Course{cloneCourse(from), cloneCourse(to)},
		Description: fmt.Sprintf("%s: %d minutes between %s (%s) and %s (%s), walking takes about %.0f minutes",
			day, gap, from.CourseCode, from.Location.Building, to.CourseCode, to.Location.Building, travel),
		Suggestions: []string{
			"Pick sections with a longer gap between them",
			fmt.Sprintf("Ask the %s instructor about arriving late", to.CourseCode),
		},
		AutoResolvable: true,
	}
}

func missingPrerequisites(courses []models.Course) []models.CourseConflict {
	codes := make(map[string]bool, len(courses))
	for _, course := range courses {
		codes[normalizeCode(course.CourseCode)] = true
	}
	var out []models.CourseConflict
	for _, course := range courses {
		var missing []string
		for _, prereq := range course.Metadata.Prerequisites {
			if code := normalizeCode(prereq); code != "" && !codes[code] {
				missing = append(missing, strings.TrimSpace(prereq))
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		out = append(out, models.CourseConflict{
			Type:        models.ConflictPrerequisiteMissing,
			Severity:    models.SeverityHigh,
			Courses:     []models.Course{cloneCourse(course)},
			Description: fmt.Sprintf("%s requires %s", course.CourseCode, strings.Join(missing, ", ")),
			Suggestions: []string{
				fmt.Sprintf("Enroll in %s first", strings.Join(missing, ", ")),
				"Request a prerequisite waiver from the department",
			},
			AutoResolvable: false,
		})
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}
