package plans

import (
	"context"
	"sync"
)

// memoryStorage implements Storage with an in-memory plan map.
// Used in tests and local development.
type memoryStorage struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryStorage returns an empty in-memory plan Storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{plans: make(map[string]Plan)}
}

func (s *memoryStorage) FindByName(ctx context.Context, name string) (Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[name]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return clonePlan(plan), nil
}

func (s *memoryStorage) Insert(ctx context.Context, plan Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.Name]; exists {
		return ErrPlanAlreadyExists
	}
	s.plans[plan.Name] = clonePlan(plan)
	return nil
}
