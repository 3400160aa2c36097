package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lehmann314159/tangocho/internal/models"
)

// TaskStore persists daily task bundles as an append-only list
type TaskStore struct {
	store Store
	mu    sync.Mutex
}

// NewTaskStore creates a task store on top of store
func NewTaskStore(store Store) *TaskStore {
	return &TaskStore{store: store}
}

// List returns every saved task in insertion order
func (s *TaskStore) List(ctx context.Context) ([]models.DailyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append adds task to the end of the list
func (s *TaskStore) Append(ctx context.Context, task models.DailyTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return err
	}
	tasks = append(tasks, task)
	return s.save(ctx, tasks)
}

// Complete marks the task completed at the given time. Completing an
// already completed task overwrites CompletedAt.
func (s *TaskStore) Complete(ctx context.Context, id string, at time.Time) (*models.DailyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i].Completed = true
		tasks[i].CompletedAt = &at
		if err := s.save(ctx, tasks); err != nil {
			return nil, err
		}
		return &tasks[i], nil
	}

	return nil, ErrNotFound
}

// DeleteBefore drops tasks created before cutoff and returns how many were
// removed
func (s *TaskStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]models.DailyTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.CreatedAt.Before(cutoff) {
			kept = append(kept, t)
		}
	}

	removed := len(tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *TaskStore) load(ctx context.Context) ([]models.DailyTask, error) {
	var tasks []models.DailyTask
	if _, err := s.store.Get(ctx, KeyDailyTasks, &tasks); err != nil {
		return nil, fmt.Errorf("failed to load daily tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) save(ctx context.Context, tasks []models.DailyTask) error {
	if tasks == nil {
		tasks = []models.DailyTask{}
	}
	if err := s.store.Set(ctx, KeyDailyTasks, tasks); err != nil {
		return fmt.Errorf("failed to save daily tasks: %w", err)
	}
	return nil
}
