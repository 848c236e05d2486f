package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type blockingOptimizer struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingOptimizer) Get(ctx context.Context, ownerID, id string) (*models.Plan, error) {
	return &models.Plan{ID: id, OwnerID: ownerID, Revision: 1}, nil
}

func (b *blockingOptimizer) Optimize(ctx context.Context, ownerID, id string, req dto.TransformPlanRequest) (*models.Plan, error) {
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	if b.err != nil {
		return nil, b.err
	}
	return &models.Plan{ID: id, OwnerID: ownerID, Revision: req.Revision + 1}, nil
}

func waitForStatus(t *testing.T, svc *OptimizeJobService, ownerID, id string, status models.OptimizeJobStatus) *models.OptimizeJob {
	t.Helper()
	var job *models.OptimizeJob
	require.Eventually(t, func() bool {
		current, err := svc.Status(context.Background(), ownerID, id)
		if err != nil {
			return false
		}
		job = current
		return current.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestOptimizeJobServiceRunsPlanOptimization(t *testing.T) {
	metrics := NewMetricsService()
	planner := newTestPlanner(nil, metrics)
	c := weekdayConstraints()
	plan, err := planner.Synthesize(context.Background(), "user-1", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)

	svc := NewOptimizeJobService(planner, metrics, nil, OptimizeJobConfig{Workers: 1, QueueSize: 4})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Submit(context.Background(), "user-1", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OptimizeJobQueued, job.Status)
	assert.Equal(t, plan.ID, job.PlanID)

	done := waitForStatus(t, svc, "user-1", job.ID, models.OptimizeJobFinished)
	assert.Equal(t, 2, done.Revision)
	require.NotNil(t, done.FinishedAt)

	stored, err := planner.Get(context.Background(), "user-1", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Revision)
	assert.Equal(t, uint64(1), metrics.Snapshot().OptimizeJobs[string(models.OptimizeJobFinished)])

	_, err = svc.Status(context.Background(), "someone-else", job.ID)
	assert.True(t, errors.Is(err, appErrors.ErrJobNotFound))
}

func TestOptimizeJobServiceUnknownPlan(t *testing.T) {
	svc := NewOptimizeJobService(newTestPlanner(nil, nil), nil, nil, OptimizeJobConfig{})
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), "", "missing")
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))
}

func TestOptimizeJobServiceNotStarted(t *testing.T) {
	svc := NewOptimizeJobService(&blockingOptimizer{}, nil, nil, OptimizeJobConfig{})

	_, err := svc.Submit(context.Background(), "", "plan-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}

func TestOptimizeJobServiceRecordsFailure(t *testing.T) {
	svc := NewOptimizeJobService(&blockingOptimizer{err: appErrors.ErrPlanStale}, nil, nil, OptimizeJobConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Submit(context.Background(), "", "plan-1")
	require.NoError(t, err)

	failed := waitForStatus(t, svc, "", job.ID, models.OptimizeJobFailed)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, appErrors.ErrPlanStale.Message, *failed.ErrorMessage)
}

func TestOptimizeJobServiceQueueFull(t *testing.T) {
	stub := &blockingOptimizer{started: make(chan struct{}, 1), release: make(chan struct{})}
	svc := NewOptimizeJobService(stub, nil, nil, OptimizeJobConfig{Workers: 1, QueueSize: 1})
	svc.Start(context.Background())
	defer svc.Stop()
	defer close(stub.release)

	_, err := svc.Submit(context.Background(), "", "plan-1")
	require.NoError(t, err)
	<-stub.started

	_, err = svc.Submit(context.Background(), "", "plan-2")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "", "plan-3")
	assert.True(t, errors.Is(err, appErrors.ErrQueueFull))
}
