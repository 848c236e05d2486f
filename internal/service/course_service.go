package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type courseRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
	Upsert(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, ownerID, id string) error
}

// CourseService manages a user's stored course set.
type CourseService struct {
	repo        courseRepository
	validator   *validator.Validate
	logger      *zap.Logger
	maxICSBytes int64
	location    *time.Location
	cache       *CacheService
	now         func() time.Time
}

// NewCourseService constructs the service. ICS times in UTC are converted to loc. Edits
// evict the owner's cached stored-course analyses; cache may be nil.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger, maxICSBytes int64, loc *time.Location, cache *CacheService) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxICSBytes <= 0 {
		maxICSBytes = 1 << 20
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CourseService{repo: repo, validator: validate, logger: logger, maxICSBytes: maxICSBytes, location: loc, cache: cache, now: time.Now}
}

// List returns the owner's courses.
func (s *CourseService) List(ctx context.Context, ownerID string) ([]models.Course, error) {
	courses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Upsert stores a course keyed by (owner, course code).
func (s *CourseService) Upsert(ctx context.Context, ownerID string, req dto.UpsertCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := models.Course{
		OwnerID:    ownerID,
		CourseCode: strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		Name:       strings.TrimSpace(req.Name),
		Schedule:   models.RecurringSchedule(req.Schedule),
		Location:   req.Location,
		Metadata:   req.Metadata,
	}
	if err := s.save(ctx, &course); err != nil {
		return nil, err
	}
	s.cache.InvalidateStoredAnalysis(ctx, ownerID)
	return &course, nil
}

// Delete removes one of the owner's courses.
func (s *CourseService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.cache.InvalidateStoredAnalysis(ctx, ownerID)
	return nil
}

// ImportICS turns the weekly events of an iCalendar file into stored courses.
func (s *CourseService) ImportICS(ctx context.Context, ownerID string, r io.Reader) (*dto.ImportCoursesResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxICSBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read calendar")
	}
	if int64(len(data)) > s.maxICSBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}

	courses, skipped, err := parseCourseCalendar(data, s.location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar file")
	}

	resp := &dto.ImportCoursesResponse{Imported: make([]models.Course, 0, len(courses)), Skipped: skipped}
	for i := range courses {
		course := courses[i]
		course.OwnerID = ownerID
		if err := s.validator.Struct(course); err != nil {
			resp.Skipped++
			continue
		}
		if err := s.save(ctx, &course); err != nil {
			return nil, err
		}
		resp.Imported = append(resp.Imported, course)
	}
	if len(resp.Imported) > 0 {
		s.cache.InvalidateStoredAnalysis(ctx, ownerID)
	}
	s.logger.Info("calendar imported",
		zap.String("owner_id", ownerID),
		zap.Int("imported", len(resp.Imported)),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

func (s *CourseService) save(ctx context.Context, course *models.Course) error {
	for i, slot := range course.Schedule {
		if day := planner.NormalizeDay(slot.DayOfWeek); day != "" {
			course.Schedule[i].DayOfWeek = day
		}
	}
	now := s.now().UTC()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.CreatedAt = now
	course.UpdatedAt = now
	if err := s.repo.Upsert(ctx, course); err != nil {
		return appErrors.Internal(err, "failed to save course")
	}
	return nil
}
