package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
	"github.com/noah-isme/weekplan-api/pkg/export"
)

type preferenceReader interface {
	Get(ctx context.Context, userID string) (*models.SchedulePreference, error)
}

// PlannerConfig sizes the plan store.
type PlannerConfig struct {
	PlanTTL   time.Duration
	StoreSize int
}

// PlannerService synthesizes grids and applies the optimizer and advisor to stored plans.
type PlannerService struct {
	store     *planStore
	prefs     preferenceReader
	optimizer *planner.Optimizer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPlannerService constructs the planner service. prefs may be nil.
func NewPlannerService(prefs preferenceReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		store:     newPlanStore(cfg.StoreSize, cfg.PlanTTL),
		prefs:     prefs,
		optimizer: planner.NewOptimizer(planner.WithObserver(metrics.ObservePlannerPass)),
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Synthesize builds a new plan, optionally running the optimizer and advisor over it.
func (s *PlannerService) Synthesize(ctx context.Context, ownerID string, req dto.CreatePlanRequest) (*models.Plan, error) {
	constraints, err := s.resolveConstraints(ctx, ownerID, req.Constraints)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grid := planner.SynthesizeAt(constraints, now)
	s.metrics.RecordGrid(planner.SourceSynthesizer)
	if req.Optimize {
		grid = s.optimizer.Optimize(grid, grid.Metadata.Constraints)
		s.metrics.RecordGrid(planner.SourceOptimizer)
	}
	if req.Suggest {
		grid = planner.Suggest(grid, grid.Metadata.Constraints)
		s.metrics.RecordGrid(planner.SourceAdvisor)
	}
	grid.Metadata.Statistics = planner.Statistics(grid)

	plan := models.Plan{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Revision:    1,
		Grid:        grid,
		Constraints: grid.Metadata.Constraints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.store.Save(plan)
	s.logger.Debug("plan synthesized", zap.String("plan_id", plan.ID), zap.String("source", grid.Metadata.Source))
	return &plan, nil
}

// Get returns a stored plan created by ownerID. Anonymous plans are only visible to
// anonymous callers.
func (s *PlannerService) Get(ctx context.Context, ownerID, id string) (*models.Plan, error) {
	plan, ok := s.store.Get(id)
	if !ok || plan.OwnerID != ownerID {
		return nil, appErrors.ErrPlanNotFound
	}
	return &plan, nil
}

// Optimize runs the optimizer pipeline over a stored plan.
func (s *PlannerService) Optimize(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error) {
	return s.transform(ctx, ownerID, id, req, planner.SourceOptimizer, s.optimizer.Optimize)
}

// Suggest fills the remaining free time of a stored plan.
func (s *PlannerService) Suggest(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error) {
	return s.transform(ctx, ownerID, id, req, planner.SourceAdvisor, planner.Suggest)
}

type gridTransform func(models.ScheduleGrid, models.ScheduleConstraints) models.ScheduleGrid

func (s *PlannerService) transform(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest, source string, fn gridTransform) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transform payload")
	}
	current, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Revision != 0 && req.Revision != current.Revision {
		return nil, appErrors.ErrPlanStale
	}

	constraints := current.Constraints
	if req.Constraints != nil {
		constraints = planner.Normalize(*req.Constraints)
	}

	grid := fn(current.Grid, constraints)
	if grid.Metadata.Source != source {
		s.logger.Warn("planner transform recovered, keeping previous grid", zap.String("plan_id", id), zap.String("source", source))
	}
	grid.Metadata.Constraints = constraints
	grid.Metadata.Statistics = planner.Statistics(grid)
	s.metrics.RecordGrid(source)

	updated, err := s.store.Replace(id, current.Revision, grid, s.now())
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Export renders a stored plan as csv, pdf or xlsx.
func (s *PlannerService) Export(ctx context.Context, ownerID, id string, query dto.ExportPlanQuery) (*dto.ExportedFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status, "format must be csv, pdf or xlsx")
	}
	exporter, ok := export.ForFormat(query.Format)
	if !ok {
		return nil, appErrors.ErrInvalidFormat
	}
	plan, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Weekly plan (revision %d)", plan.Revision)
	body, err := exporter.Render(GridDataset(plan.Grid), title)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render plan export")
	}
	return &dto.ExportedFile{
		Filename:    fmt.Sprintf("weekplan-%s.%s", shortID(plan.ID), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

// PlanCount reports how many plans are currently held.
func (s *PlannerService) PlanCount() int {
	return s.store.Len()
}

// GridDataset flattens a grid into one export row per time slot.
func GridDataset(grid models.ScheduleGrid) export.Dataset {
	headers := append([]string{"Time"}, grid.Days...)
	rows := make([]map[string]string, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		record := make(map[string]string, len(headers))
		record["Time"] = row.Time
		for _, day := range grid.Days {
			activity, ok := row.Activities[day]
			if !ok {
				activity = models.FreeTime()
			}
			record[day] = activity.Content
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *PlannerService) resolveConstraints(ctx context.Context, ownerID string, supplied *models.ScheduleConstraints) (models.ScheduleConstraints, error) {
	if supplied != nil {
		return *supplied, nil
	}
	if ownerID == "" || s.prefs == nil {
		return models.ScheduleConstraints{}, nil
	}
	pref, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return models.ScheduleConstraints{}, err
	}
	return pref.Constraints, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
