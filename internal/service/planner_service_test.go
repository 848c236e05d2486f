package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type stubPreferences struct {
	pref  *models.SchedulePreference
	err   error
	calls int
}

func (s *stubPreferences) Get(ctx context.Context, userID string) (*models.SchedulePreference, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pref, nil
}

func weekdayConstraints() models.ScheduleConstraints {
	return models.ScheduleConstraints{
		StartDay:          "Monday",
		StartTime:         "06:00",
		BedTime:           "23:00",
		DesiredSleepHours: 8,
		WorkDays:          []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		WorkStartTime:     "09:00",
		WorkEndTime:       "17:00",
	}
}

func newTestPlanner(prefs preferenceReader, metrics *MetricsService) *PlannerService {
	svc := NewPlannerService(prefs, nil, metrics, nil, PlannerConfig{})
	svc.now = func() time.Time { return time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestPlannerServiceSynthesizeStoresPlan(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	c := weekdayConstraints()

	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)
	require.NotEmpty(t, plan.ID)
	assert.Equal(t, 1, plan.Revision)
	assert.Len(t, plan.Grid.Rows, 24)
	assert.Equal(t, planner.SourceSynthesizer, plan.Grid.Metadata.Source)
	assert.Equal(t, 56, plan.Grid.Metadata.Statistics.SleepHours)
	assert.Equal(t, 40, plan.Grid.Metadata.Statistics.WorkHours)
	assert.Equal(t, "6:00 AM", plan.Grid.Rows[0].Time)

	stored, err := svc.Get(context.Background(), "", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Grid, stored.Grid)
	assert.Equal(t, 1, svc.PlanCount())
}

func TestPlannerServiceSynthesizeUsesStoredPreferences(t *testing.T) {
	prefs := &stubPreferences{pref: &models.SchedulePreference{
		UserID:      "user-1",
		Constraints: models.ScheduleConstraints{StartDay: "Wednesday", StartTime: "07:00"},
	}}
	svc := newTestPlanner(prefs, nil)

	plan, err := svc.Synthesize(context.Background(), "user-1", dto.CreatePlanRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, prefs.calls)
	assert.Equal(t, "Wednesday", plan.Grid.Days[0])
	assert.Equal(t, "user-1", plan.OwnerID)

	_, err = svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, prefs.calls, "anonymous requests use defaults")
}

func TestPlannerServiceSynthesizePreferenceError(t *testing.T) {
	svc := newTestPlanner(&stubPreferences{err: appErrors.Clone(appErrors.ErrInternal, "db down")}, nil)

	_, err := svc.Synthesize(context.Background(), "user-1", dto.CreatePlanRequest{})
	require.Error(t, err)
	assert.Equal(t, 0, svc.PlanCount())
}

func TestPlannerServiceOwnerIsolation(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	c := weekdayConstraints()
	plan, err := svc.Synthesize(context.Background(), "owner", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "someone-else", plan.ID)
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))

	_, err = svc.Get(context.Background(), "owner", "missing")
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))

	_, err = svc.Get(context.Background(), "", plan.ID)
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))
}

func TestPlannerServiceAnonymousPlanHiddenFromUsers(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	c := weekdayConstraints()
	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "user-1", plan.ID)
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))
	_, err = svc.Optimize(context.Background(), "user-1", plan.ID, dto.TransformPlanRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))

	stored, err := svc.Get(context.Background(), "", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, stored.ID)
}

func TestPlannerServiceOptimizeBumpsRevision(t *testing.T) {
	metrics := NewMetricsService()
	svc := newTestPlanner(nil, metrics)
	c := weekdayConstraints()
	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)

	optimized, err := svc.Optimize(context.Background(), "", plan.ID, dto.TransformPlanRequest{Revision: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, optimized.Revision)
	assert.Equal(t, planner.SourceOptimizer, optimized.Grid.Metadata.Source)
	assert.Equal(t, 7, optimized.Grid.Metadata.Statistics.ExerciseHours)

	_, err = svc.Optimize(context.Background(), "", plan.ID, dto.TransformPlanRequest{Revision: 1})
	assert.True(t, errors.Is(err, appErrors.ErrPlanStale))

	assert.Equal(t, uint64(2), metrics.Snapshot().PlansGenerated)
}

func TestPlannerServiceSuggestFillsFreeTime(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	c := weekdayConstraints()
	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)
	require.Positive(t, plan.Grid.Metadata.Statistics.FreeHours)

	suggested, err := svc.Suggest(context.Background(), "", plan.ID, dto.TransformPlanRequest{})
	require.NoError(t, err)
	assert.Zero(t, suggested.Grid.Metadata.Statistics.FreeHours)
	assert.Equal(t, planner.SourceAdvisor, suggested.Grid.Metadata.Source)
}

func TestPlannerServiceTransformRejectsNegativeRevision(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{})
	require.NoError(t, err)

	_, err = svc.Suggest(context.Background(), "", plan.ID, dto.TransformPlanRequest{Revision: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPlannerServiceSynthesizeWithAllStages(t *testing.T) {
	metrics := NewMetricsService()
	svc := newTestPlanner(nil, metrics)
	c := weekdayConstraints()

	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c, Optimize: true, Suggest: true})
	require.NoError(t, err)
	assert.Equal(t, planner.SourceAdvisor, plan.Grid.Metadata.Source)
	assert.Equal(t, uint64(3), metrics.Snapshot().PlansGenerated)
}

func TestPlannerServiceExport(t *testing.T) {
	svc := newTestPlanner(nil, nil)
	c := weekdayConstraints()
	plan, err := svc.Synthesize(context.Background(), "", dto.CreatePlanRequest{Constraints: &c})
	require.NoError(t, err)

	file, err := svc.Export(context.Background(), "", plan.ID, dto.ExportPlanQuery{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "weekplan-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, "Time,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday", lines[0])

	xlsx, err := svc.Export(context.Background(), "", plan.ID, dto.ExportPlanQuery{Format: "XLSX"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsx.Filename, ".xlsx"))
	assert.NotEmpty(t, xlsx.Body)

	_, err = svc.Export(context.Background(), "", plan.ID, dto.ExportPlanQuery{Format: "doc"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidFormat.Code, appErrors.FromError(err).Code)
}

func TestGridDatasetFillsMissingCells(t *testing.T) {
	grid := models.ScheduleGrid{
		Days: []string{"Monday", "Tuesday"},
		Rows: []models.ScheduleRow{{
			Time:       "9:00 AM",
			Activities: map[string]models.Activity{"Monday": {Content: "Work", Category: models.CategoryWork}},
		}},
	}

	data := GridDataset(grid)
	assert.Equal(t, []string{"Time", "Monday", "Tuesday"}, data.Headers)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Work", data.Rows[0]["Monday"])
	assert.Equal(t, models.ContentFreeTime, data.Rows[0]["Tuesday"])
}

func TestPlanStoreReplaceChecksRevision(t *testing.T) {
	store := newPlanStore(2, time.Minute)
	store.Save(models.Plan{ID: "a", Revision: 1})

	updated, err := store.Replace("a", 1, models.ScheduleGrid{Days: []string{"Monday"}}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Revision)

	_, err = store.Replace("a", 1, models.ScheduleGrid{}, time.Now())
	assert.True(t, errors.Is(err, appErrors.ErrPlanStale))

	_, err = store.Replace("missing", 1, models.ScheduleGrid{}, time.Now())
	assert.True(t, errors.Is(err, appErrors.ErrPlanNotFound))
}

func TestPlanStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := newPlanStore(2, time.Minute)
	store.Save(models.Plan{ID: "a"})
	store.Save(models.Plan{ID: "b"})
	_, ok := store.Get("a")
	require.True(t, ok)
	store.Save(models.Plan{ID: "c"})

	_, ok = store.Get("b")
	assert.False(t, ok)
	_, ok = store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}
