package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lehmann314159/tangocho/internal/models"
)

// PlanStore persists study plans keyed by plan id
type PlanStore struct {
	store Store
	mu    sync.Mutex
}

// NewPlanStore creates a plan store on top of store
func NewPlanStore(store Store) *PlanStore {
	return &PlanStore{store: store}
}

// List returns every saved plan
func (s *PlanStore) List(ctx context.Context) ([]models.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save inserts plan or replaces the plan with the same id. New plans get
// CreatedAt and UpdatedAt set to now, replaced plans only UpdatedAt. A
// replacement without CreatedAt keeps the stored one.
func (s *PlanStore) Save(ctx context.Context, plan models.StudyPlan, now time.Time) (*models.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	plan.UpdatedAt = now
	replaced := false
	for i := range plans {
		if plans[i].ID == plan.ID {
			if plan.CreatedAt.IsZero() {
				plan.CreatedAt = plans[i].CreatedAt
			}
			plans[i] = plan
			replaced = true
			break
		}
	}
	if !replaced {
		plan.CreatedAt = now
		plans = append(plans, plan)
	}

	if err := s.save(ctx, plans); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Get returns the plan with the given id
func (s *PlanStore) Get(ctx context.Context, id string) (*models.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, ErrNotFound
}

// Active returns the first plan whose status is active
func (s *PlanStore) Active(ctx context.Context) (*models.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].Status == models.PlanStatusActive {
			return &plans[i], nil
		}
	}
	return nil, ErrNotFound
}

// Update applies fn to the plan with the given id and persists the result.
// fn returning ErrNotFound aborts without writing.
func (s *PlanStore) Update(ctx context.Context, id string, now time.Time, fn func(*models.StudyPlan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range plans {
		if plans[i].ID != id {
			continue
		}
		if err := fn(&plans[i]); err != nil {
			return err
		}
		plans[i].UpdatedAt = now
		return s.save(ctx, plans)
	}
	return ErrNotFound
}

// Delete removes the plan with the given id
func (s *PlanStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]models.StudyPlan, 0, len(plans))
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

func (s *PlanStore) load(ctx context.Context) ([]models.StudyPlan, error) {
	var plans []models.StudyPlan
	if _, err := s.store.Get(ctx, KeyStudyPlans, &plans); err != nil {
		return nil, fmt.Errorf("failed to load study plans: %w", err)
	}
	return plans, nil
}

func (s *PlanStore) save(ctx context.Context, plans []models.StudyPlan) error {
	if err := s.store.Set(ctx, KeyStudyPlans, plans); err != nil {
		return fmt.Errorf("failed to save study plans: %w", err)
	}
	return nil
}
