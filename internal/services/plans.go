package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/repository"
)

// ErrInvalidPlanStatus is returned when a plan status update carries no
// status
var ErrInvalidPlanStatus = errors.New("plan status must not be empty")

// PlanService manages saved study plans
type PlanService struct {
	plans *repository.PlanStore
	now   func() time.Time
}

// NewPlanService creates a plan service backed by plans
func NewPlanService(plans *repository.PlanStore) *PlanService {
	return &PlanService{
		plans: plans,
		now:   time.Now,
	}
}

// SavePlan inserts or replaces a plan. A plan without an id gets one, and a
// plan without a status is saved as active.
func (s *PlanService) SavePlan(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusActive
	}
	if plan.Name == "" {
		plan.Name = DefaultPlanName
	}
	return s.plans.Save(ctx, plan, s.now())
}

// AllPlans returns every saved plan
func (s *PlanService) AllPlans(ctx context.Context) ([]models.StudyPlan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.StudyPlan{}
	}
	return plans, nil
}

// GetPlan returns the plan with the given id, or nil if there is none
func (s *PlanService) GetPlan(ctx context.Context, id string) (*models.StudyPlan, error) {
	plan, err := s.plans.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// ActivePlan returns the first active plan, or nil if there is none
func (s *PlanService) ActivePlan(ctx context.Context) (*models.StudyPlan, error) {
	plan, err := s.plans.Active(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// UpdatePlanStatus sets the status of a plan. It reports false for an
// unknown id.
func (s *PlanService) UpdatePlanStatus(ctx context.Context, id, status string) (bool, error) {
	if status == "" {
		return false, ErrInvalidPlanStatus
	}

	err := s.plans.Update(ctx, id, s.now(), func(p *models.StudyPlan) error {
		p.Status = status
		return nil
	})
	return found(err)
}

// UpdatePlanProgress records the completion of one plan day. The rate is
// clamped to 0..100. It reports false when the plan or the day is unknown.
func (s *PlanService) UpdatePlanProgress(ctx context.Context, id string, day int, completed bool, rate float64) (bool, error) {
	rate = math.Max(0, math.Min(100, rate))

	err := s.plans.Update(ctx, id, s.now(), func(p *models.StudyPlan) error {
		for i := range p.Days {
			if p.Days[i].Day == day {
				p.Days[i].Completed = completed
				p.Days[i].CompletionRate = rate
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found(err)
}

// DeletePlan removes a plan. It reports false for an unknown id.
func (s *PlanService) DeletePlan(ctx context.Context, id string) (bool, error) {
	return found(s.plans.Delete(ctx, id))
}

// Progress returns how far the current time is through plan
func (s *PlanService) Progress(plan *models.StudyPlan) models.PlanProgress {
	if plan == nil || plan.TotalDays <= 0 {
		return models.PlanProgress{Progress: 100}
	}

	day := 24 * time.Hour
	remaining := int(math.Ceil(float64(plan.EndDate.Sub(s.now())) / float64(day)))
	remaining = max(0, remaining)

	total := float64(plan.TotalDays)
	progress := int(math.Round((total - float64(remaining)) / total * 100))
	progress = max(0, min(100, progress))

	return models.PlanProgress{
		RemainingDays: remaining,
		Progress:      progress,
	}
}

// found maps ErrNotFound to false
func found(err error) (bool, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update study plan: %w", err)
	}
	return true, nil
}
