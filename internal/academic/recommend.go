package academic

import (
	"fmt"
	"sort"

	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
)

// Recommendation categories.
const (
	CategoryPrerequisite      = "prerequisite_completed"
	CategoryDegreeRequirement = "degree_requirement"
	CategoryInterest          = "interest"
	CategoryWorkloadFit       = "workload_balance"
)

const (
	defaultEarlyThreshold = "09:00"
	defaultLateThreshold  = "18:00"

	interestBase      = 0.5
	interestThreshold = 0.7
	morningCutoff     = 10 * 60
	eveningCutoff     = 17 * 60
	hoursPerMaxCredit = 3
	hardLoad          = 4.0
	easyCourse        = 2
)

// RecommendationRequest carries a student's current state and the candidate catalogue.
type RecommendationRequest struct {
	Current            []models.Course
	Candidates         []models.Course
	Completed          []string
	JustCompleted      []string
	DegreeRequirements []string
	Constraints        models.ScheduleConstraints
}

type recommender struct {
	req          RecommendationRequest
	taken        map[string]bool
	justDone     map[string]bool
	required     map[string]bool
	departments  map[string]bool
	currentHours float64
	currentHard  bool
	earlyLimit   int
	lateLimit    int
}

// Recommend proposes candidates the student has neither taken nor is taking, sorted by
// confidence descending with ties broken by course id.
func Recommend(req RecommendationRequest) []models.CourseRecommendation {
	r := newRecommender(req)
	out := make([]models.CourseRecommendation, 0)
	seen := map[string]bool{}
	for _, candidate := range req.Candidates {
		code := normalizeCode(candidate.CourseCode)
		if code == "" || r.taken[code] || seen[code] {
			continue
		}
		seen[code] = true
		if rec, ok := r.evaluate(candidate); ok {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out
}

func newRecommender(req RecommendationRequest) *recommender {
	r := &recommender{
		req:         req,
		taken:       codeSet(req.Completed),
		justDone:    codeSet(req.JustCompleted),
		required:    codeSet(req.DegreeRequirements),
		departments: map[string]bool{},
		earlyLimit:  thresholdMinutes(req.Constraints.EarlyClassThreshold, defaultEarlyThreshold),
		lateLimit:   thresholdMinutes(req.Constraints.LateClassThreshold, defaultLateThreshold),
	}
	difficultySum := 0
	for _, course := range req.Current {
		r.taken[normalizeCode(course.CourseCode)] = true
		if dept := department(course); dept != "" {
			r.departments[dept] = true
		}
		difficultySum += Difficulty(course)
	}
	r.currentHours = TotalHours(req.Current)
	if len(req.Current) > 0 {
		r.currentHard = float64(difficultySum)/float64(len(req.Current)) >= hardLoad
	}
	return r
}

func (r *recommender) evaluate(candidate models.Course) (models.CourseRecommendation, bool) {
	rec := models.CourseRecommendation{CourseID: candidate.ID, CourseCode: candidate.CourseCode}

	for _, prereq := range candidate.Metadata.Prerequisites {
		if r.justDone[normalizeCode(prereq)] {
			rec.Reason = fmt.Sprintf("You just completed %s, a prerequisite for %s", prereq, candidate.CourseCode)
			rec.Confidence, rec.Category, rec.Priority = 0.85, CategoryPrerequisite, "high"
			return rec, true
		}
	}
	if r.required[normalizeCode(candidate.CourseCode)] {
		rec.Reason = fmt.Sprintf("%s satisfies a degree requirement", candidate.CourseCode)
		rec.Confidence, rec.Category, rec.Priority = 0.9, CategoryDegreeRequirement, "high"
		return rec, true
	}
	if r.violatesTimePreferences(candidate) {
		return rec, false
	}
	if interest := r.interest(candidate); interest > interestThreshold {
		rec.Reason = fmt.Sprintf("%s matches your schedule preferences and interests", candidate.CourseCode)
		rec.Confidence, rec.Category, rec.Priority = round2(interest), CategoryInterest, "medium"
		return rec, true
	}
	limit := float64(MaxCredits(r.req.Constraints) * hoursPerMaxCredit)
	if r.currentHours+EstimateWorkload(candidate).EstimatedHoursPerWeek < limit {
		rec.Reason = fmt.Sprintf("%s fits within your weekly workload", candidate.CourseCode)
		rec.Confidence, rec.Category, rec.Priority = 0.6, CategoryWorkloadFit, "medium"
		return rec, true
	}
	return rec, false
}

func (r *recommender) violatesTimePreferences(candidate models.Course) bool {
	c := r.req.Constraints
	for _, m := range meetings(candidate) {
		if c.AvoidEarlyClasses && m.start < r.earlyLimit {
			return true
		}
		if c.AvoidLateClasses && m.end > r.lateLimit {
			return true
		}
	}
	return false
}

func (r *recommender) interest(candidate models.Course) float64 {
	score := interestBase
	slots := meetings(candidate)
	pref := r.req.Constraints.StudyTimePreference
	if len(slots) > 0 {
		if pref == models.StudyMorning && all(slots, func(m meeting) bool { return m.start < morningCutoff }) {
			score += 0.2
		}
		if (pref == models.StudyEvening || pref == models.StudyNight) && all(slots, func(m meeting) bool { return m.start >= eveningCutoff }) {
			score += 0.2
		}
	}
	if r.departments[department(candidate)] {
		score += 0.1
	}
	if r.req.Constraints.DifficultyBalance && r.currentHard && Difficulty(candidate) <= easyCourse {
		score += 0.1
	}
	return score
}

func all(slots []meeting, fn func(meeting) bool) bool {
	for _, m := range slots {
		if !fn(m) {
			return false
		}
	}
	return true
}

func codeSet(codes []string) map[string]bool {
	out := make(map[string]bool, len(codes))
	for _, code := range codes {
		if c := normalizeCode(code); c != "" {
			out[c] = true
		}
	}
	return out
}

func thresholdMinutes(raw, fallback string) int {
	if minutes, ok := planner.ParseClock(raw); ok {
		return minutes
	}
	minutes, _ := planner.ParseClock(fallback)
	return minutes
}
