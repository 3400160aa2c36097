package services

import (
	"context"
	"fmt"
	"log"
	"maps"
	"sync"

	"github.com/lehmann314159/tangocho/internal/dataset"
	"github.com/lehmann314159/tangocho/internal/models"
)

// FallbackModuleTotal is the word count assumed for a module whose dataset
// cannot be loaded
const FallbackModuleTotal = 100

// StatsCache memoizes module stats until it is invalidated
type StatsCache struct {
	mu    sync.RWMutex
	stats map[string]models.ModuleStat
}

// Get returns a copy of the cached stats
func (c *StatsCache) Get() (map[string]models.ModuleStat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil {
		return nil, false
	}
	return maps.Clone(c.stats), true
}

// Set replaces the cached stats
func (c *StatsCache) Set(stats map[string]models.ModuleStat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = maps.Clone(stats)
}

// Invalidate drops the cached stats
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
}

// CatalogStats computes per-module totals and progress counts
type CatalogStats struct {
	modules []models.ModuleConfig
	loader  dataset.Loader
	ledger  *ProgressLedger
	cache   *StatsCache
	loadMu  sync.Mutex
}

// NewCatalogStats creates a catalog over the configured modules
func NewCatalogStats(modules []models.ModuleConfig, loader dataset.Loader, ledger *ProgressLedger) *CatalogStats {
	return &CatalogStats{
		modules: modules,
		loader:  loader,
		ledger:  ledger,
		cache:   &StatsCache{},
	}
}

// Modules returns the configured module list
func (c *CatalogStats) Modules() []models.ModuleConfig {
	out := make([]models.ModuleConfig, len(c.modules))
	copy(out, c.modules)
	return out
}

// Module returns the configuration of one module type
func (c *CatalogStats) Module(moduleType string) (models.ModuleConfig, bool) {
	for _, m := range c.modules {
		if m.Type == moduleType {
			return m, true
		}
	}
	return models.ModuleConfig{}, false
}

// FindWord looks ref up in its module's dataset. It returns nil when the
// module is unknown or has no such word.
func (c *CatalogStats) FindWord(ctx context.Context, ref models.WordRef) (*models.WordRecord, error) {
	m, ok := c.Module(ref.ModuleType)
	if !ok {
		return nil, nil
	}

	words, err := c.loader.Load(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s data: %w", m.Name, err)
	}
	for i := range words {
		if words[i].Ref(m.Type) == ref {
			return &words[i], nil
		}
	}
	return nil, nil
}

// LoadAllStats returns the stats of every configured module. A module whose
// dataset fails to load gets the fallback total and zero counts. Only a
// canceled context fails the whole call.
func (c *CatalogStats) LoadAllStats(ctx context.Context) (map[string]models.ModuleStat, error) {
	if stats, ok := c.cache.Get(); ok {
		return stats, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if stats, ok := c.cache.Get(); ok {
		return stats, nil
	}

	studied, favorite := c.ledger.ModuleCounts(ctx)
	stats := make(map[string]models.ModuleStat, len(c.modules))

	for _, m := range c.modules {
		words, err := c.loader.Load(ctx, m)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Printf("[catalog] failed to load %s data: %v", m.Name, err)
			stats[m.Type] = models.ModuleStat{
				Name:     m.Name,
				Total:    FallbackModuleTotal,
				Path:     m.Path,
				Degraded: true,
			}
			continue
		}

		stats[m.Type] = models.ModuleStat{
			Name:     m.Name,
			Total:    len(words),
			Studied:  studied[m.Type],
			Favorite: favorite[m.Type],
			Path:     m.Path,
		}
	}

	c.cache.Set(stats)
	return stats, nil
}

// Invalidate drops the cached stats so the next call recomputes them
func (c *CatalogStats) Invalidate() {
	c.cache.Invalidate()
}
