package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type preferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.SchedulePreference, error)
	Upsert(ctx context.Context, pref *models.SchedulePreference) error
}

// PreferenceService manages the constraints record stored per user.
type PreferenceService struct {
	repo      preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	now       func() time.Time
}

// NewPreferenceService constructs the service. cache may be nil.
func NewPreferenceService(repo preferenceRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger, cache: cache, now: time.Now}
}

// DefaultConstraints is what a user without stored preferences plans with.
func DefaultConstraints() models.ScheduleConstraints {
	c := planner.Normalize(models.ScheduleConstraints{})
	c.MaxCreditsPerSemester = 18
	return c
}

// Get returns the stored preferences or the defaults when none exist.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.SchedulePreference, error) {
	pref, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return &models.SchedulePreference{UserID: userID, Constraints: DefaultConstraints()}, nil
		}
		return nil, appErrors.Internal(err, "failed to load preferences")
	}
	return pref, nil
}

// Upsert validates and stores the caller's constraints. Omitted fields take their defaults.
func (s *PreferenceService) Upsert(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*models.SchedulePreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}
	if (req.WorkStartTime == "") != (req.WorkEndTime == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workStartTime and workEndTime must be set together")
	}

	constraints := planner.Normalize(req.Constraints())
	if constraints.MaxCreditsPerSemester == 0 {
		constraints.MaxCreditsPerSemester = 18
	}

	now := s.now().UTC()
	pref := &models.SchedulePreference{
		ID:          uuid.NewString(),
		UserID:      userID,
		Constraints: constraints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Internal(err, "failed to save preferences")
	}
	s.cache.InvalidateStoredAnalysis(ctx, userID)
	s.logger.Info("preferences updated", zap.String("user_id", userID))
	return pref, nil
}
