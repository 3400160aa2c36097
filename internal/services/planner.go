package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lehmann314159/tangocho/internal/dataset"
	"github.com/lehmann314159/tangocho/internal/models"
)

// Plan generation defaults
const (
	DefaultPlanName          = "日语单词学习计划"
	DefaultPlanTotalDays     = 30
	DefaultPlanDailyNewWords = 20
	DefaultPlanReviewRatio   = 1.0

	// ReviewBaseline is the fixed daily baseline the review cap is scaled
	// from, independent of the plan's own daily new-word count
	ReviewBaseline = 20
)

// ErrInvalidPlanOptions is returned for plan options that cannot produce a
// plan
var ErrInvalidPlanOptions = errors.New("invalid plan options")

// StudyPlanGenerator builds multi-day study plans from the catalog
type StudyPlanGenerator struct {
	catalog *CatalogStats
	loader  dataset.Loader
	now     func() time.Time

	mu     sync.Mutex
	cached *models.StudyPlan
}

// NewStudyPlanGenerator creates a plan generator
func NewStudyPlanGenerator(catalog *CatalogStats, loader dataset.Loader) *StudyPlanGenerator {
	return &StudyPlanGenerator{
		catalog: catalog,
		loader:  loader,
		now:     time.Now,
	}
}

// learnedWord is a word that has been assigned as new on some plan day
type learnedWord struct {
	word       models.PlanWord
	firstStudy int
}

// learnedSet keeps assigned words in assignment order
type learnedSet struct {
	order []models.WordRef
	words map[models.WordRef]learnedWord
}

func newLearnedSet() *learnedSet {
	return &learnedSet{words: make(map[models.WordRef]learnedWord)}
}

func (s *learnedSet) has(ref models.WordRef) bool {
	_, ok := s.words[ref]
	return ok
}

func (s *learnedSet) add(ref models.WordRef, w learnedWord) {
	s.order = append(s.order, ref)
	s.words[ref] = w
}

// GenerateStudyPlan builds a plan over the selected modules. Zero-valued
// options take their defaults. The plan is remembered as the cached plan but
// is not persisted.
func (g *StudyPlanGenerator) GenerateStudyPlan(ctx context.Context, opts models.PlanOptions) (*models.StudyPlan, error) {
	plan, err := g.generate(ctx, opts)
	if err != nil {
		log.Printf("[planner] failed to generate study plan: %v", err)
		return nil, err
	}

	g.mu.Lock()
	g.cached = plan
	g.mu.Unlock()

	return plan, nil
}

func (g *StudyPlanGenerator) generate(ctx context.Context, opts models.PlanOptions) (*models.StudyPlan, error) {
	opts, ratio, err := resolvePlanOptions(opts)
	if err != nil {
		return nil, err
	}

	stats, err := g.catalog.LoadAllStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load module stats: %w", err)
	}

	entries := []models.ModulePlanEntry{}
	totalWords := 0
	for _, m := range g.catalog.Modules() {
		if len(opts.Modules) > 0 && !slices.Contains(opts.Modules, m.Type) {
			continue
		}
		stat, ok := stats[m.Type]
		if !ok || stat.Total <= 0 {
			continue
		}
		totalWords += stat.Total
		entries = append(entries, models.ModulePlanEntry{
			Type:           m.Type,
			Name:           m.Name,
			TotalWords:     stat.Total,
			CompletedWords: stat.Studied,
		})
	}

	var totalDays, dailyNewWords int
	if opts.PlanType == models.PlanTypeDays {
		totalDays = opts.TotalDays
		dailyNewWords = ceilDiv(totalWords, totalDays)
	} else {
		dailyNewWords = opts.DailyNewWords
		totalDays = ceilDiv(totalWords, dailyNewWords)
	}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries[i].Words = g.loadPlanWords(ctx, entries[i])
	}

	now := g.now()
	learned := newLearnedSet()
	cursors := make([]int, len(entries))
	days := make([]models.PlanDay, 0, totalDays)

	for day := 1; day <= totalDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		newWords := selectNewWords(entries, cursors, totalWords, dailyNewWords, day, learned)
		reviewWords := selectReviewWords(learned, day, ratio)

		days = append(days, models.PlanDay{
			Day:         day,
			Date:        now.AddDate(0, 0, day-1),
			NewWords:    newWords,
			ReviewWords: reviewWords,
			TotalWords:  len(newWords) + len(reviewWords),
		})
	}

	endDate := now
	if totalDays > 0 {
		endDate = now.AddDate(0, 0, totalDays-1)
	}

	return &models.StudyPlan{
		ID:            uuid.NewString(),
		Name:          opts.Name,
		StartDate:     now,
		EndDate:       endDate,
		TotalDays:     totalDays,
		DailyNewWords: dailyNewWords,
		ReviewRatio:   ratio,
		TotalWords:    totalWords,
		Modules:       entries,
		Days:          days,
		Status:        models.PlanStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// resolvePlanOptions fills defaults and rejects options no plan can be built
// from
func resolvePlanOptions(opts models.PlanOptions) (models.PlanOptions, float64, error) {
	if opts.PlanType == "" {
		opts.PlanType = models.PlanTypeDays
	}
	if opts.PlanType != models.PlanTypeDays && opts.PlanType != models.PlanTypeDailyWords {
		return opts, 0, fmt.Errorf("%w: unknown plan type %q", ErrInvalidPlanOptions, opts.PlanType)
	}
	if opts.TotalDays < 0 {
		return opts, 0, fmt.Errorf("%w: totalDays must not be negative", ErrInvalidPlanOptions)
	}
	if opts.DailyNewWords < 0 {
		return opts, 0, fmt.Errorf("%w: dailyNewWords must not be negative", ErrInvalidPlanOptions)
	}
	if opts.TotalDays == 0 {
		opts.TotalDays = DefaultPlanTotalDays
	}
	if opts.DailyNewWords == 0 {
		opts.DailyNewWords = DefaultPlanDailyNewWords
	}

	ratio := DefaultPlanReviewRatio
	if opts.ReviewRatio != nil {
		ratio = *opts.ReviewRatio
	}
	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return opts, 0, fmt.Errorf("%w: reviewRatio must be a non-negative number", ErrInvalidPlanOptions)
	}

	if opts.Name == "" {
		opts.Name = DefaultPlanName
	}
	return opts, ratio, nil
}

// loadPlanWords loads a module's words. A failed or empty load yields
// placeholder words up to the module's recorded total.
func (g *StudyPlanGenerator) loadPlanWords(ctx context.Context, entry models.ModulePlanEntry) []models.WordRecord {
	cfg, _ := g.catalog.Module(entry.Type)

	words, err := g.loader.Load(ctx, cfg)
	if err != nil {
		log.Printf("[planner] failed to load %s data: %v", entry.Name, err)
	}
	if len(words) > 0 {
		return words
	}
	return placeholderWords(entry.Name, entry.TotalWords)
}

// placeholderWords synthesizes total tagged stand-in words for a module
func placeholderWords(name string, total int) []models.WordRecord {
	words := make([]models.WordRecord, 0, total)
	for i := 1; i <= total; i++ {
		n := strconv.Itoa(i)
		words = append(words, models.WordRecord{
			ID:          models.WordID(n),
			Word:        name + n,
			Kana:        "かな" + n,
			Meaning:     name + "单词" + n + "的意思",
			Placeholder: true,
		})
	}
	return words
}

// selectNewWords fills one day's new-word quota. Modules are visited in
// order and each contributes at most its proportional share, rounded up.
func selectNewWords(entries []models.ModulePlanEntry, cursors []int, totalWords, quota, day int, learned *learnedSet) []models.PlanWord {
	newWords := []models.PlanWord{}
	if totalWords <= 0 {
		return newWords
	}

	for i, entry := range entries {
		if len(newWords) >= quota {
			break
		}

		share := ceilDiv(entry.TotalWords*quota, totalWords)
		added := 0
		for cursors[i] < len(entry.Words) {
			if len(newWords) >= quota || added >= share {
				break
			}

			w := models.PlanWord{
				ModuleType: entry.Type,
				ModuleName: entry.Name,
				WordRecord: entry.Words[cursors[i]],
			}
			cursors[i]++

			ref := w.Ref()
			if learned.has(ref) {
				continue
			}

			newWords = append(newWords, w)
			learned.add(ref, learnedWord{word: w, firstStudy: day})
			added++
		}
	}
	return newWords
}

// selectReviewWords returns the learned words whose days since first study
// is a checkpoint, capped at ceil(ratio * ReviewBaseline)
func selectReviewWords(learned *learnedSet, day int, ratio float64) []models.PlanWord {
	reviewWords := []models.PlanWord{}
	limit := int(math.Ceil(ratio * ReviewBaseline))

	for _, ref := range learned.order {
		if len(reviewWords) >= limit {
			break
		}
		lw := learned.words[ref]
		if IsReviewCheckpoint(day - lw.firstStudy) {
			reviewWords = append(reviewWords, lw.word)
		}
	}
	return reviewWords
}

// CachedPlan returns the most recently generated plan, or nil
func (g *StudyPlanGenerator) CachedPlan() *models.StudyPlan {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cached
}

// ClearCache forgets the most recently generated plan
func (g *StudyPlanGenerator) ClearCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cached = nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
