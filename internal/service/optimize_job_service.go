package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
	"github.com/noah-isme/weekplan-api/pkg/jobs"
)

const optimizeJobType = "plan.optimize"

type planOptimizer interface {
	Get(ctx context.Context, ownerID, id string) (*models.Plan, error)
	Optimize(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error)
}

// OptimizeJobConfig sizes the worker pool and the finished-job retention.
type OptimizeJobConfig struct {
	Workers   int
	QueueSize int
	Retention time.Duration
	MaxJobs   int
}

type optimizePayload struct {
	PlanID   string
	OwnerID  string
	Revision int
}

// OptimizeJobService runs plan optimizations on a background worker queue.
type OptimizeJobService struct {
	planner planOptimizer
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	store *expirable.LRU[string, models.OptimizeJob]
}

// NewOptimizeJobService constructs the service. Call Start before submitting.
func NewOptimizeJobService(planner planOptimizer, metrics *MetricsService, logger *zap.Logger, cfg OptimizeJobConfig) *OptimizeJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 4096
	}
	s := &OptimizeJobService{
		planner: planner,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		store:   expirable.NewLRU[string, models.OptimizeJob](cfg.MaxJobs, nil, cfg.Retention),
	}
	s.queue = jobs.NewQueue("optimize", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueSize,
		OnFailure:  s.fail,
		Logger:     logger,
	})
	return s
}

// Start launches the workers.
func (s *OptimizeJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight jobs to finish.
func (s *OptimizeJobService) Stop() {
	s.queue.Stop()
}

// Submit queues an optimization of the plan at its current revision.
func (s *OptimizeJobService) Submit(ctx context.Context, ownerID, planID string) (*models.OptimizeJob, error) {
	plan, err := s.planner.Get(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	job := models.OptimizeJob{
		ID:          uuid.NewString(),
		PlanID:      plan.ID,
		RequestedBy: ownerID,
		Status:      models.OptimizeJobQueued,
		Revision:    plan.Revision,
		CreatedAt:   s.now(),
	}
	s.put(job)

	err = s.queue.TryEnqueue(jobs.Job{
		ID:      job.ID,
		Type:    optimizeJobType,
		Payload: optimizePayload{PlanID: plan.ID, OwnerID: ownerID, Revision: plan.Revision},
	})
	if err != nil {
		s.store.Remove(job.ID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.ErrQueueFull
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "optimize queue is not running")
	}
	s.metrics.RecordOptimizeJob(models.OptimizeJobQueued)
	s.metrics.SetQueueDepth(s.queue.Depth())
	return &job, nil
}

// Status returns a job visible to ownerID.
func (s *OptimizeJobService) Status(ctx context.Context, ownerID, id string) (*models.OptimizeJob, error) {
	job, ok := s.store.Get(id)
	if !ok || job.RequestedBy != ownerID {
		return nil, appErrors.ErrJobNotFound
	}
	return &job, nil
}

func (s *OptimizeJobService) handle(ctx context.Context, j jobs.Job) error {
	payload, ok := j.Payload.(optimizePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", j.Payload)
	}
	s.metrics.SetQueueDepth(s.queue.Depth())
	s.transition(j.ID, func(job *models.OptimizeJob) {
		job.Status = models.OptimizeJobProcessing
	})

	plan, err := s.planner.Optimize(ctx, payload.OwnerID, payload.PlanID, dto.TransformPlanRequest{Revision: payload.Revision})
	if err != nil {
		return err
	}

	finished := s.now()
	s.transition(j.ID, func(job *models.OptimizeJob) {
		job.Status = models.OptimizeJobFinished
		job.Revision = plan.Revision
		job.FinishedAt = &finished
	})
	s.logger.Debug("optimize job finished", zap.String("job_id", j.ID), zap.String("plan_id", payload.PlanID))
	return nil
}

func (s *OptimizeJobService) fail(j jobs.Job, err error) {
	finished := s.now()
	msg := appErrors.FromError(err).Message
	s.transition(j.ID, func(job *models.OptimizeJob) {
		job.Status = models.OptimizeJobFailed
		job.ErrorMessage = &msg
		job.FinishedAt = &finished
	})
}

func (s *OptimizeJobService) transition(id string, apply func(*models.OptimizeJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.store.Get(id)
	if !ok {
		return
	}
	apply(&job)
	s.metrics.RecordOptimizeJob(job.Status)
	s.store.Add(id, job)
}

func (s *OptimizeJobService) put(job models.OptimizeJob) {
	s.mu.Lock()
	s.store.Add(job.ID, job)
	s.mu.Unlock()
}
