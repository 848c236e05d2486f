package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

// planStore keeps generated plans for a bounded time. Entries are evicted by age and,
// once full, least-recently used first.
type planStore struct {
	mu    sync.Mutex
	items *expirable.LRU[string, models.Plan]
}

func newPlanStore(size int, ttl time.Duration) *planStore {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &planStore{items: expirable.NewLRU[string, models.Plan](size, nil, ttl)}
}

func (s *planStore) Save(plan models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Add(plan.ID, plan)
}

// Get returns a deep copy of the stored plan.
func (s *planStore) Get(id string) (models.Plan, bool) {
	plan, ok := s.items.Get(id)
	if !ok {
		return models.Plan{}, false
	}
	plan.Grid = planner.CloneSchedule(plan.Grid)
	return plan, true
}

// Replace swaps in grid and its constraints when the stored revision still equals
// revision, then bumps it.
func (s *planStore) Replace(id string, revision int, grid models.ScheduleGrid, at time.Time) (models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.items.Get(id)
	if !ok {
		return models.Plan{}, appErrors.ErrPlanNotFound
	}
	if plan.Revision != revision {
		return models.Plan{}, appErrors.ErrPlanStale
	}
	plan.Grid = grid
	plan.Constraints = grid.Metadata.Constraints
	plan.Revision++
	plan.UpdatedAt = at
	s.items.Add(id, plan)
	return plan, nil
}

func (s *planStore) Len() int {
	return s.items.Len()
}
