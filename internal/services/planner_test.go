package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lehmann314159/tangocho/internal/models"
)

func ratio(v float64) *float64 {
	return &v
}

func TestStudyPlanGenerator_DayCountDerivation(t *testing.T) {
	tests := []struct {
		name          string
		opts          models.PlanOptions
		wantDays      int
		wantDailyNew  int
		wantDayOneNew int
	}{
		{
			name:          "fixed days",
			opts:          models.PlanOptions{PlanType: models.PlanTypeDays, TotalDays: 10},
			wantDays:      10,
			wantDailyNew:  10,
			wantDayOneNew: 10,
		},
		{
			name:          "fixed daily words",
			opts:          models.PlanOptions{PlanType: models.PlanTypeDailyWords, DailyNewWords: 25},
			wantDays:      4,
			wantDailyNew:  25,
			wantDayOneNew: 25,
		},
		{
			name:          "uneven days round daily words up",
			opts:          models.PlanOptions{PlanType: models.PlanTypeDays, TotalDays: 3},
			wantDays:      3,
			wantDailyNew:  34,
			wantDayOneNew: 34,
		},
		{
			name:          "defaults",
			opts:          models.PlanOptions{},
			wantDays:      DefaultPlanTotalDays,
			wantDailyNew:  4,
			wantDayOneNew: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, cleanup := setupTestManager(t, []string{"noun"}, map[string]int{"noun": 100})
			defer cleanup()

			plan, err := sm.Planner.GenerateStudyPlan(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("GenerateStudyPlan() error = %v", err)
			}
			if plan.TotalWords != 100 {
				t.Errorf("expected 100 total words, got %d", plan.TotalWords)
			}
			if plan.TotalDays != tt.wantDays || len(plan.Days) != tt.wantDays {
				t.Errorf("expected %d days, got %d (%d day entries)", tt.wantDays, plan.TotalDays, len(plan.Days))
			}
			if plan.DailyNewWords != tt.wantDailyNew {
				t.Errorf("expected %d daily new words, got %d", tt.wantDailyNew, plan.DailyNewWords)
			}
			if got := len(plan.Days[0].NewWords); got != tt.wantDayOneNew {
				t.Errorf("expected %d new words on day 1, got %d", tt.wantDayOneNew, got)
			}
		})
	}
}

func TestStudyPlanGenerator_NoDuplicateNewWords(t *testing.T) {
	sm, cleanup := setupTestManager(t,
		[]string{"noun", "verb", "adverb"},
		map[string]int{"noun": 37, "verb": 21, "adverb": 8},
	)
	defer cleanup()

	plan, err := sm.Planner.GenerateStudyPlan(context.Background(), models.PlanOptions{
		PlanType:      models.PlanTypeDailyWords,
		DailyNewWords: 7,
	})
	if err != nil {
		t.Fatalf("GenerateStudyPlan() error = %v", err)
	}

	seen := make(map[models.WordRef]int)
	for _, day := range plan.Days {
		if len(day.NewWords) > plan.DailyNewWords {
			t.Errorf("day %d has %d new words, quota %d", day.Day, len(day.NewWords), plan.DailyNewWords)
		}
		for _, w := range day.NewWords {
			if first, ok := seen[w.Ref()]; ok {
				t.Errorf("word %s assigned on day %d and day %d", w.Ref(), first, day.Day)
			}
			seen[w.Ref()] = day.Day
		}
	}
}

func TestStudyPlanGenerator_ReviewWordsFollowCheckpoints(t *testing.T) {
	sm, cleanup := setupTestManager(t, []string{"noun"}, map[string]int{"noun": 100})
	defer cleanup()

	plan, err := sm.Planner.GenerateStudyPlan(context.Background(), models.PlanOptions{
		PlanType:      models.PlanTypeDailyWords,
		DailyNewWords: 10,
		ReviewRatio:   ratio(0.5),
	})
	if err != nil {
		t.Fatalf("GenerateStudyPlan() error = %v", err)
	}

	introduced := make(map[models.WordRef]int)
	for _, day := range plan.Days {
		for _, w := range day.NewWords {
			introduced[w.Ref()] = day.Day
		}
	}

	limit := 10 // ceil(0.5 * 20)
	for _, day := range plan.Days {
		if len(day.ReviewWords) > limit {
			t.Errorf("day %d has %d review words, cap %d", day.Day, len(day.ReviewWords), limit)
		}
		for _, w := range day.ReviewWords {
			first, ok := introduced[w.Ref()]
			if !ok || first >= day.Day {
				t.Errorf("day %d reviews %s which was not introduced earlier", day.Day, w.Ref())
				continue
			}
			if !IsReviewCheckpoint(day.Day - first) {
				t.Errorf("day %d reviews %s introduced on day %d", day.Day, w.Ref(), first)
			}
		}
		if day.TotalWords != len(day.NewWords)+len(day.ReviewWords) {
			t.Errorf("day %d total %d does not match its lists", day.Day, day.TotalWords)
		}
	}

	if got := len(plan.Days[0].ReviewWords); got != 0 {
		t.Errorf("expected no reviews on day 1, got %d", got)
	}
	if got := len(plan.Days[1].ReviewWords); got != 10 {
		t.Errorf("expected day 1 words reviewed on day 2, got %d", got)
	}
}

func TestStudyPlanGenerator_EndToEnd(t *testing.T) {
	sm, cleanup := setupTestManager(t, []string{"noun"}, map[string]int{"noun": 50})
	defer cleanup()

	plan, err := sm.Planner.GenerateStudyPlan(context.Background(), models.PlanOptions{
		PlanType:      models.PlanTypeDailyWords,
		DailyNewWords: 10,
	})
	if err != nil {
		t.Fatalf("GenerateStudyPlan() error = %v", err)
	}

	if len(plan.Days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(plan.Days))
	}
	if got := len(plan.Days[0].NewWords); got != 10 {
		t.Errorf("expected 10 new words on day 1, got %d", got)
	}

	union := make(map[models.WordRef]bool)
	for _, day := range plan.Days {
		for _, w := range day.NewWords {
			union[w.Ref()] = true
		}
	}
	if len(union) != 50 {
		t.Errorf("expected all 50 words introduced, got %d", len(union))
	}

	if plan.Status != models.PlanStatusActive {
		t.Errorf("expected status %q, got %q", models.PlanStatusActive, plan.Status)
	}
	if plan.Name != DefaultPlanName {
		t.Errorf("expected default name, got %q", plan.Name)
	}
	if !plan.StartDate.Equal(testNow) || !plan.EndDate.Equal(testNow.AddDate(0, 0, 4)) {
		t.Errorf("unexpected plan dates %v to %v", plan.StartDate, plan.EndDate)
	}
	if !plan.Days[4].Date.Equal(testNow.AddDate(0, 0, 4)) {
		t.Errorf("expected day 5 on %v, got %v", testNow.AddDate(0, 0, 4), plan.Days[4].Date)
	}
	if plan.ID == "" {
		t.Error("expected generated plan to carry an id")
	}
	if sm.Planner.CachedPlan() != plan {
		t.Error("expected generated plan to be cached")
	}

	saved, err := sm.Plans.SavePlan(context.Background(), *plan)
	if err != nil {
		t.Fatalf("SavePlan() error = %v", err)
	}
	if saved.ID != plan.ID {
		t.Errorf("expected saved plan to keep id %q, got %q", plan.ID, saved.ID)
	}

	sm.Planner.ClearCache()
	if sm.Planner.CachedPlan() != nil {
		t.Error("expected cache to be cleared")
	}
}

func TestStudyPlanGenerator_PlaceholderWords(t *testing.T) {
	sm, cleanup := setupTestManager(t, []string{"noun", "verb"}, map[string]int{"noun": 10})
	defer cleanup()

	plan, err := sm.Planner.GenerateStudyPlan(context.Background(), models.PlanOptions{
		PlanType:      models.PlanTypeDailyWords,
		DailyNewWords: 10,
		Modules:       []string{"verb"},
	})
	if err != nil {
		t.Fatalf("GenerateStudyPlan() error = %v", err)
	}

	if len(plan.Modules) != 1 || plan.Modules[0].Type != "verb" {
		t.Fatalf("expected only the verb module, got %+v", plan.Modules)
	}
	if plan.TotalWords != FallbackModuleTotal {
		t.Errorf("expected fallback total %d, got %d", FallbackModuleTotal, plan.TotalWords)
	}

	words := plan.Modules[0].Words
	if len(words) != FallbackModuleTotal {
		t.Fatalf("expected %d placeholder words, got %d", FallbackModuleTotal, len(words))
	}
	if !words[0].Placeholder || words[0].ID != "1" || words[0].Word != "verb-name1" {
		t.Errorf("unexpected placeholder word %+v", words[0])
	}
	if words[0].Kana != "かな1" {
		t.Errorf("expected placeholder kana, got %q", words[0].Kana)
	}
}

func TestStudyPlanGenerator_InvalidOptions(t *testing.T) {
	sm, cleanup := setupTestManager(t, []string{"noun"}, map[string]int{"noun": 10})
	defer cleanup()

	tests := []struct {
		name string
		opts models.PlanOptions
	}{
		{name: "unknown type", opts: models.PlanOptions{PlanType: "weeks"}},
		{name: "negative days", opts: models.PlanOptions{PlanType: models.PlanTypeDays, TotalDays: -1}},
		{name: "negative daily words", opts: models.PlanOptions{PlanType: models.PlanTypeDailyWords, DailyNewWords: -5}},
		{name: "negative ratio", opts: models.PlanOptions{ReviewRatio: ratio(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sm.Planner.GenerateStudyPlan(context.Background(), tt.opts)
			if !errors.Is(err, ErrInvalidPlanOptions) {
				t.Errorf("expected ErrInvalidPlanOptions, got %v", err)
			}
		})
	}
}

func TestStudyPlanGenerator_CanceledContext(t *testing.T) {
	sm, cleanup := setupTestManager(t, []string{"noun"}, map[string]int{"noun": 10})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sm.Planner.GenerateStudyPlan(ctx, models.PlanOptions{}); err == nil {
		t.Error("expected error for canceled context")
	}
	if sm.Planner.CachedPlan() != nil {
		t.Error("expected no cached plan after failure")
	}
}
