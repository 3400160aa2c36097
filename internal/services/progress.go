package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/repository"
)

const (
	// RecentLimit caps the recent list
	RecentLimit = 50

	// streakCap bounds the reported study streak
	streakCap = 7
)

// ProgressLedger tracks recency, favorites and study counts per word.
// Persistence is best effort: store failures are logged and the operation
// becomes a no-op.
type ProgressLedger struct {
	store repository.Store
	mu    sync.Mutex
	now   func() time.Time
}

// NewProgressLedger creates a ledger on top of store
func NewProgressLedger(store repository.Store) *ProgressLedger {
	return &ProgressLedger{
		store: store,
		now:   time.Now,
	}
}

// AddToRecent moves ref to the front of the recent list
func (l *ProgressLedger) AddToRecent(ctx context.Context, ref models.WordRef) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent, ok := l.readRefs(ctx, repository.KeyRecent)
	if !ok {
		return
	}
	updated := make([]models.WordRef, 0, len(recent)+1)
	updated = append(updated, ref)
	for _, r := range recent {
		if r != ref {
			updated = append(updated, r)
		}
	}
	if len(updated) > RecentLimit {
		updated = updated[:RecentLimit]
	}

	l.writeRefs(ctx, repository.KeyRecent, updated)
}

// Recent returns the recent list, most recent first
func (l *ProgressLedger) Recent(ctx context.Context) []models.WordRef {
	l.mu.Lock()
	defer l.mu.Unlock()
	recent, _ := l.readRefs(ctx, repository.KeyRecent)
	return recent
}

// ToggleFavorite flips the favorite membership of ref and returns the new
// state. When the favorites cannot be read nothing changes and false is
// returned.
func (l *ProgressLedger) ToggleFavorite(ctx context.Context, ref models.WordRef) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	favorites, ok := l.readRefs(ctx, repository.KeyFavorites)
	if !ok {
		return false
	}
	for i, f := range favorites {
		if f == ref {
			favorites = append(favorites[:i], favorites[i+1:]...)
			l.writeRefs(ctx, repository.KeyFavorites, favorites)
			return false
		}
	}

	favorites = append(favorites, ref)
	l.writeRefs(ctx, repository.KeyFavorites, favorites)
	return true
}

// IsFavorite reports whether ref is a favorite
func (l *ProgressLedger) IsFavorite(ctx context.Context, ref models.WordRef) bool {
	for _, f := range l.Favorites(ctx) {
		if f == ref {
			return true
		}
	}
	return false
}

// Favorites returns every favorite in insertion order
func (l *ProgressLedger) Favorites(ctx context.Context) []models.WordRef {
	l.mu.Lock()
	defer l.mu.Unlock()
	favorites, _ := l.readRefs(ctx, repository.KeyFavorites)
	return favorites
}

// RecordStudy increments the study count of ref and stamps the study time
func (l *ProgressLedger) RecordStudy(ctx context.Context, ref models.WordRef) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats, ok := l.readStats(ctx)
	if !ok {
		return
	}
	stat := stats[ref]
	stat.Count++
	now := l.now()
	stat.LastStudy = &now
	stats[ref] = stat

	l.writeStats(ctx, stats)
}

// StudyWord records that a word card was opened: the word becomes the most
// recent entry and its study count grows
func (l *ProgressLedger) StudyWord(ctx context.Context, ref models.WordRef) {
	l.AddToRecent(ctx, ref)
	l.RecordStudy(ctx, ref)
}

// StudyStats returns the study stat of every studied word
func (l *ProgressLedger) StudyStats(ctx context.Context) map[models.WordRef]models.StudyStat {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats, _ := l.readStats(ctx)
	return stats
}

// StudyCount returns how many times ref was studied
func (l *ProgressLedger) StudyCount(ctx context.Context, ref models.WordRef) int {
	return l.StudyStats(ctx)[ref].Count
}

// WordProgress returns the combined progress view of one word
func (l *ProgressLedger) WordProgress(ctx context.Context, ref models.WordRef) models.WordProgress {
	stat := l.StudyStats(ctx)[ref]
	return models.WordProgress{
		ModuleType: ref.ModuleType,
		WordID:     ref.WordID,
		Favorite:   l.IsFavorite(ctx, ref),
		StudyCount: stat.Count,
		LastStudy:  stat.LastStudy,
	}
}

// ModuleCounts returns per module the number of studied words and favorites
func (l *ProgressLedger) ModuleCounts(ctx context.Context) (studied, favorite map[string]int) {
	studied = make(map[string]int)
	favorite = make(map[string]int)

	for ref := range l.StudyStats(ctx) {
		studied[ref.ModuleType]++
	}
	for _, ref := range l.Favorites(ctx) {
		favorite[ref.ModuleType]++
	}
	return studied, favorite
}

// Overview summarizes all study activity
func (l *ProgressLedger) Overview(ctx context.Context) models.ProgressOverview {
	stats := l.StudyStats(ctx)
	loc := l.now().Location()

	total := 0
	days := make(map[string]struct{})
	for _, stat := range stats {
		total += stat.Count
		if stat.LastStudy != nil {
			days[stat.LastStudy.In(loc).Format(time.DateOnly)] = struct{}{}
		}
	}

	return models.ProgressOverview{
		RecentCount:     len(l.Recent(ctx)),
		FavoriteCount:   len(l.Favorites(ctx)),
		TotalStudyCount: total,
		StudiedWords:    len(stats),
		StudyDays:       len(days),
		StudyStreak:     min(len(days), streakCap),
	}
}

// readRefs decodes the ref list under key. ok is false when the store
// could not be read; the returned list is then empty and must not be
// written back.
func (l *ProgressLedger) readRefs(ctx context.Context, key string) (refs []models.WordRef, ok bool) {
	var keys []string
	if _, err := l.store.Get(ctx, key, &keys); err != nil {
		log.Printf("[progress] failed to read %s: %v", key, err)
		return []models.WordRef{}, false
	}

	refs = make([]models.WordRef, 0, len(keys))
	for _, k := range keys {
		ref, err := models.ParseWordRef(k)
		if err != nil {
			log.Printf("[progress] skipping entry in %s: %v", key, err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, true
}

func (l *ProgressLedger) writeRefs(ctx context.Context, key string, refs []models.WordRef) {
	keys := make([]string, len(refs))
	for i, r := range refs {
		keys[i] = r.Key()
	}
	if err := l.store.Set(ctx, key, keys); err != nil {
		log.Printf("[progress] failed to save %s: %v", key, err)
	}
}

func (l *ProgressLedger) readStats(ctx context.Context) (stats map[models.WordRef]models.StudyStat, ok bool) {
	var raw map[string]models.StudyStat
	if _, err := l.store.Get(ctx, repository.KeyStudyStats, &raw); err != nil {
		log.Printf("[progress] failed to read study stats: %v", err)
		return map[models.WordRef]models.StudyStat{}, false
	}

	stats = make(map[models.WordRef]models.StudyStat, len(raw))
	for k, stat := range raw {
		ref, err := models.ParseWordRef(k)
		if err != nil {
			log.Printf("[progress] skipping study stat: %v", err)
			continue
		}
		stats[ref] = stat
	}
	return stats, true
}

func (l *ProgressLedger) writeStats(ctx context.Context, stats map[models.WordRef]models.StudyStat) {
	raw := make(map[string]models.StudyStat, len(stats))
	for ref, stat := range stats {
		raw[ref.Key()] = stat
	}
	if err := l.store.Set(ctx, repository.KeyStudyStats, raw); err != nil {
		log.Printf("[progress] failed to save study stats: %v", err)
	}
}
