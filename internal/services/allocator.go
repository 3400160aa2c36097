package services

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/lehmann314159/tangocho/internal/models"
)

// NewWordAllocator splits a daily new-word goal across modules in
// proportion to their unstudied words
type NewWordAllocator struct {
	catalog *CatalogStats
	now     func() time.Time
}

// NewNewWordAllocator creates an allocator reading from catalog
func NewNewWordAllocator(catalog *CatalogStats) *NewWordAllocator {
	return &NewWordAllocator{
		catalog: catalog,
		now:     time.Now,
	}
}

// GenerateNewTasks allocates dailyGoal new words across modules. The sum of
// the returned counts never exceeds dailyGoal. Modules whose dataset could
// not be loaded are skipped.
func (a *NewWordAllocator) GenerateNewTasks(ctx context.Context, dailyGoal int) ([]models.NewWordTask, error) {
	tasks := []models.NewWordTask{}

	stats, err := a.catalog.LoadAllStats(ctx)
	if err != nil {
		return nil, err
	}

	modules := a.catalog.Modules()
	totalNew := 0
	for _, m := range modules {
		stat, ok := stats[m.Type]
		if !ok || stat.Degraded {
			continue
		}
		totalNew += stat.Remaining()
	}

	if totalNew <= 0 {
		return tasks, nil
	}

	now := a.now()
	for _, m := range modules {
		stat, ok := stats[m.Type]
		if !ok || stat.Total <= 0 {
			continue
		}
		if stat.Degraded {
			log.Printf("[allocator] skipping %s: dataset unavailable", m.Type)
			continue
		}

		newCount := stat.Remaining()
		if newCount <= 0 {
			continue
		}

		goal := int(math.Round(float64(newCount) / float64(totalNew) * float64(dailyGoal)))
		if goal > 0 {
			tasks = append(tasks, models.NewWordTask{
				ModuleType: m.Type,
				Count:      goal,
				Type:       models.TaskTypeNew,
				Timestamp:  now,
			})
		}
	}

	return trimToGoal(tasks, dailyGoal), nil
}

// trimToGoal removes units from the largest allocation until the total is
// at most goal. An allocation that would drop to zero is removed.
func trimToGoal(tasks []models.NewWordTask, goal int) []models.NewWordTask {
	assigned := 0
	for _, t := range tasks {
		assigned += t.Count
	}
	if assigned <= goal {
		return tasks
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Count > tasks[j].Count
	})

	for assigned > goal && len(tasks) > 0 {
		if tasks[0].Count > 1 {
			tasks[0].Count--
		} else {
			tasks = tasks[1:]
		}
		assigned--
	}
	return tasks
}
