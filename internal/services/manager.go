package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lehmann314159/tangocho/internal/dataset"
	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/repository"
)

// ServiceManager wires every study service to one store and one dataset
// loader
type ServiceManager struct {
	Progress  *ProgressLedger
	Catalog   *CatalogStats
	Review    *ReviewScheduler
	Allocator *NewWordAllocator
	Tasks     *DailyTaskComposer
	Planner   *StudyPlanGenerator
	Plans     *PlanService

	store repository.Store
}

// NewServiceManager builds the services over store, reading datasets of
// modules through loader
func NewServiceManager(store repository.Store, loader dataset.Loader, modules []models.ModuleConfig) *ServiceManager {
	ledger := NewProgressLedger(store)
	catalog := NewCatalogStats(modules, loader, ledger)
	review := NewReviewScheduler(ledger)
	allocator := NewNewWordAllocator(catalog)

	return &ServiceManager{
		Progress:  ledger,
		Catalog:   catalog,
		Review:    review,
		Allocator: allocator,
		Tasks:     NewDailyTaskComposer(review, allocator, repository.NewTaskStore(store)),
		Planner:   NewStudyPlanGenerator(catalog, loader),
		Plans:     NewPlanService(repository.NewPlanStore(store)),
		store:     store,
	}
}

// SetClock replaces the time source of every service
func (sm *ServiceManager) SetClock(now func() time.Time) {
	sm.Progress.now = now
	sm.Review.now = now
	sm.Allocator.now = now
	sm.Tasks.now = now
	sm.Planner.now = now
	sm.Plans.now = now
}

// ClearAllData removes every persisted entry of the namespace and drops the
// caches that depend on it
func (sm *ServiceManager) ClearAllData(ctx context.Context) error {
	if err := sm.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	sm.Catalog.Invalidate()
	sm.Planner.ClearCache()
	log.Printf("[services] all study data cleared")
	return nil
}
