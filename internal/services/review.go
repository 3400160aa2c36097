package services

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/lehmann314159/tangocho/internal/models"
)

// ReviewCheckpoints are the day offsets at which a studied word is due for
// review. A word is due only on the exact day; a missed day is not carried
// forward.
var ReviewCheckpoints = []int{1, 2, 4, 7, 15, 30}

// IsReviewCheckpoint reports whether days is one of the review checkpoints
func IsReviewCheckpoint(days int) bool {
	return slices.Contains(ReviewCheckpoints, days)
}

// daysBetween returns the number of whole days elapsed from since to now
func daysBetween(since, now time.Time) int {
	return int(math.Floor(now.Sub(since).Hours() / 24))
}

// ReviewScheduler finds studied words whose review is due today
type ReviewScheduler struct {
	ledger *ProgressLedger
	now    func() time.Time
}

// NewReviewScheduler creates a scheduler reading from ledger
func NewReviewScheduler(ledger *ProgressLedger) *ReviewScheduler {
	return &ReviewScheduler{
		ledger: ledger,
		now:    time.Now,
	}
}

// GenerateReviewTasks returns every studied word whose days since the last
// study is exactly a checkpoint, oldest study first
func (s *ReviewScheduler) GenerateReviewTasks(ctx context.Context) []models.ReviewCandidate {
	now := s.now()
	candidates := []models.ReviewCandidate{}

	for ref, stat := range s.ledger.StudyStats(ctx) {
		if stat.LastStudy == nil {
			continue
		}

		days := daysBetween(*stat.LastStudy, now)
		if !IsReviewCheckpoint(days) {
			continue
		}

		candidates = append(candidates, models.ReviewCandidate{
			ModuleType: ref.ModuleType,
			WordID:     ref.WordID,
			LastStudy:  *stat.LastStudy,
			StudyCount: stat.Count,
			DueDays:    days,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].LastStudy.Equal(candidates[j].LastStudy) {
			return candidates[i].LastStudy.Before(candidates[j].LastStudy)
		}
		ki := models.NewWordRef(candidates[i].ModuleType, candidates[i].WordID).Key()
		kj := models.NewWordRef(candidates[j].ModuleType, candidates[j].WordID).Key()
		return ki < kj
	})

	return candidates
}
