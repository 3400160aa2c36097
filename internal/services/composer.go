package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/repository"
)

// Defaults of a daily bundle and of task retention
const (
	DefaultNewGoal           = 10
	DefaultReviewGoal        = 20
	DefaultTaskRetentionDays = 30
)

// DailyOptions are the per-day goals of a task bundle
type DailyOptions struct {
	NewGoal    int `json:"newGoal"`
	ReviewGoal int `json:"reviewGoal"`
}

// DefaultDailyOptions returns the goals used when none are given
func DefaultDailyOptions() DailyOptions {
	return DailyOptions{NewGoal: DefaultNewGoal, ReviewGoal: DefaultReviewGoal}
}

// DailyTaskComposer builds daily task bundles and keeps the saved ones
type DailyTaskComposer struct {
	scheduler *ReviewScheduler
	allocator *NewWordAllocator
	tasks     *repository.TaskStore
	now       func() time.Time
}

// NewDailyTaskComposer creates a composer
func NewDailyTaskComposer(scheduler *ReviewScheduler, allocator *NewWordAllocator, tasks *repository.TaskStore) *DailyTaskComposer {
	return &DailyTaskComposer{
		scheduler: scheduler,
		allocator: allocator,
		tasks:     tasks,
		now:       time.Now,
	}
}

// GenerateDailyTasks combines due reviews and new-word allocations. The
// bundle is not saved.
func (c *DailyTaskComposer) GenerateDailyTasks(ctx context.Context, opts DailyOptions) (models.DailyTask, error) {
	review := c.scheduler.GenerateReviewTasks(ctx)
	if opts.ReviewGoal < 0 {
		opts.ReviewGoal = 0
	}
	if len(review) > opts.ReviewGoal {
		review = review[:opts.ReviewGoal]
	}

	newTasks, err := c.allocator.GenerateNewTasks(ctx, opts.NewGoal)
	if err != nil {
		return models.DailyTask{}, fmt.Errorf("failed to allocate new words: %w", err)
	}

	return models.DailyTask{
		Review: review,
		New:    newTasks,
		Total:  len(review) + len(newTasks),
	}, nil
}

// SaveDailyTask assigns an id and creation time and appends the bundle
func (c *DailyTaskComposer) SaveDailyTask(ctx context.Context, task models.DailyTask) (models.DailyTask, error) {
	task.ID = uuid.NewString()
	task.CreatedAt = c.now()
	task.Completed = false
	task.CompletedAt = nil

	if err := c.tasks.Append(ctx, task); err != nil {
		return models.DailyTask{}, err
	}
	return task, nil
}

// AllTasks returns every saved bundle in creation order
func (c *DailyTaskComposer) AllTasks(ctx context.Context) ([]models.DailyTask, error) {
	tasks, err := c.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.DailyTask{}
	}
	return tasks, nil
}

// TodayTasks returns the bundles created on the current local calendar day
func (c *DailyTaskComposer) TodayTasks(ctx context.Context) ([]models.DailyTask, error) {
	tasks, err := c.AllTasks(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	today := []models.DailyTask{}
	for _, t := range tasks {
		if sameDay(t.CreatedAt, now) {
			today = append(today, t)
		}
	}
	return today, nil
}

// CompleteTask marks a bundle completed. It reports false for an unknown
// id. Completing twice succeeds and moves CompletedAt.
func (c *DailyTaskComposer) CompleteTask(ctx context.Context, id string) (bool, error) {
	_, err := c.tasks.Complete(ctx, id, c.now())
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanupOldTasks drops bundles created more than days days ago
func (c *DailyTaskComposer) CleanupOldTasks(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = DefaultTaskRetentionDays
	}
	cutoff := c.now().AddDate(0, 0, -days)

	removed, err := c.tasks.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("[tasks] removed %d tasks older than %d days", removed, days)
	}
	return removed, nil
}

// EnsureTodayTasks generates and saves a bundle unless one already exists
// for today. It reports whether a new bundle was saved.
func (c *DailyTaskComposer) EnsureTodayTasks(ctx context.Context, opts DailyOptions) (models.DailyTask, bool, error) {
	today, err := c.TodayTasks(ctx)
	if err != nil {
		return models.DailyTask{}, false, err
	}
	if len(today) > 0 {
		return today[len(today)-1], false, nil
	}

	task, err := c.GenerateDailyTasks(ctx, opts)
	if err != nil {
		return models.DailyTask{}, false, err
	}
	saved, err := c.SaveDailyTask(ctx, task)
	if err != nil {
		return models.DailyTask{}, false, err
	}
	return saved, true, nil
}

// sameDay reports whether t falls on the same calendar day as ref in ref's
// location
func sameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
