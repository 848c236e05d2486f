package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/academic"
	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/pkg/cache"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type ownedCourseLister interface {
	List(ctx context.Context, ownerID string) ([]models.Course, error)
}

// AcademicService runs the course analyzers, caching results by a hash of their input.
// Every method reports whether the result came from cache.
type AcademicService struct {
	cache     *CacheService
	courses   ownedCourseLister
	prefs     preferenceReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// AcademicServiceParams groups the service dependencies. Courses and Preferences are
// only needed for stored-course analysis.
type AcademicServiceParams struct {
	Cache       *CacheService
	Courses     ownedCourseLister
	Preferences preferenceReader
	Validator   *validator.Validate
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewAcademicService constructs the service.
func NewAcademicService(params AcademicServiceParams) *AcademicService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AcademicService{
		cache:     params.Cache,
		courses:   params.Courses,
		prefs:     params.Preferences,
		validator: params.Validator,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

// DetectConflicts reports time, location and prerequisite conflicts in a course set.
func (s *AcademicService) DetectConflicts(ctx context.Context, req dto.CourseSetRequest) ([]models.CourseConflict, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course set")
	}
	var out []models.CourseConflict
	hit, err := cachedAnalysis(ctx, s, req.Courses, "conflicts", &out, func() ([]models.CourseConflict, error) {
		return s.detect(req.Courses), nil
	})
	return out, hit, err
}

// EstimateWorkload estimates weekly hours per course.
func (s *AcademicService) EstimateWorkload(ctx context.Context, req dto.CourseSetRequest) (*dto.WorkloadResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course set")
	}
	var out dto.WorkloadResponse
	hit, err := cachedAnalysis(ctx, s, req.Courses, "workload", &out, func() (dto.WorkloadResponse, error) {
		return workloadOf(req.Courses), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, hit, nil
}

// Recommend ranks candidate courses. Without explicit constraints the caller's stored
// preferences apply.
func (s *AcademicService) Recommend(ctx context.Context, ownerID string, req dto.RecommendationRequest) ([]models.CourseRecommendation, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recommendation payload")
	}
	constraints, err := s.constraintsFor(ctx, ownerID, req.Constraints)
	if err != nil {
		return nil, false, err
	}
	input := academic.RecommendationRequest{
		Current:            req.Current,
		Candidates:         req.Candidates,
		Completed:          req.Completed,
		JustCompleted:      req.JustCompleted,
		DegreeRequirements: req.DegreeRequirements,
		Constraints:        constraints,
	}
	var out []models.CourseRecommendation
	hit, err := cachedAnalysis(ctx, s, input, "recommendations", &out, func() ([]models.CourseRecommendation, error) {
		return academic.Recommend(input), nil
	})
	return out, hit, err
}

// Feasibility scores a semester course set.
func (s *AcademicService) Feasibility(ctx context.Context, ownerID string, req dto.FeasibilityRequest) (*models.FeasibilityReport, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feasibility payload")
	}
	constraints, err := s.constraintsFor(ctx, ownerID, req.Constraints)
	if err != nil {
		return nil, false, err
	}
	input := feasibilityInput{Courses: req.Courses, Constraints: constraints}
	var out models.FeasibilityReport
	hit, err := cachedAnalysis(ctx, s, input, "feasibility", &out, func() (models.FeasibilityReport, error) {
		return academic.Feasibility(req.Courses, s.detect(req.Courses), constraints), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, hit, nil
}

// AnalyzeStored runs every analyzer over the user's stored courses and preferences.
func (s *AcademicService) AnalyzeStored(ctx context.Context, userID string) (*dto.CourseAnalysisResponse, bool, error) {
	if s.courses == nil {
		return nil, false, appErrors.Clone(appErrors.ErrUnavailable, "course store is disabled")
	}
	courses, err := s.courses.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	constraints, err := s.constraintsFor(ctx, userID, nil)
	if err != nil {
		return nil, false, err
	}

	input := feasibilityInput{Courses: courses, Constraints: constraints}
	var out dto.CourseAnalysisResponse
	hit, err := cachedAnalysis(ctx, s, input, storedAnalysisKind(userID), &out, func() (dto.CourseAnalysisResponse, error) {
		conflicts := s.detect(courses)
		return dto.CourseAnalysisResponse{
			Conflicts:   conflicts,
			Workload:    workloadOf(courses),
			Feasibility: academic.Feasibility(courses, conflicts, constraints),
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, hit, nil
}

type feasibilityInput struct {
	Courses     []models.Course            `json:"courses"`
	Constraints models.ScheduleConstraints `json:"constraints"`
}

func (s *AcademicService) detect(courses []models.Course) []models.CourseConflict {
	conflicts := academic.DetectConflicts(courses)
	s.metrics.RecordConflicts(conflicts)
	return conflicts
}

func workloadOf(courses []models.Course) dto.WorkloadResponse {
	return dto.WorkloadResponse{
		Courses:    academic.EstimateWorkloads(courses),
		TotalHours: academic.TotalHours(courses),
	}
}

func (s *AcademicService) constraintsFor(ctx context.Context, ownerID string, supplied *models.ScheduleConstraints) (models.ScheduleConstraints, error) {
	if supplied != nil {
		return *supplied, nil
	}
	if ownerID == "" || s.prefs == nil {
		return DefaultConstraints(), nil
	}
	pref, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return models.ScheduleConstraints{}, err
	}
	return pref.Constraints, nil
}

const analysisCacheScope = "analysis"

func storedAnalysisKind(userID string) string {
	return "stored:" + userID
}

// cachedAnalysis serves dest from the analysis cache or computes and stores it.
func cachedAnalysis[T any](ctx context.Context, s *AcademicService, payload interface{}, kind string, dest *T, compute func() (T, error)) (bool, error) {
	key, err := cache.Key(payload, analysisCacheScope, kind)
	if err != nil {
		s.logger.Warn("analysis cache key failed", zap.String("kind", kind), zap.Error(err))
		value, err := compute()
		*dest = value
		return false, err
	}
	return Remember(ctx, s.cache, key, dest, compute)
}
