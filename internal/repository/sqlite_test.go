package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lehmann314159/tangocho/internal/models"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestSQLiteStore_SetGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSQLiteStore(db, "")
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []string
	}{
		{
			name:  "store list",
			key:   KeyRecent,
			value: []string{"noun:1", "verb:2"},
		},
		{
			name:  "overwrite list",
			key:   KeyRecent,
			value: []string{"adverb:7"},
		},
		{
			name:  "empty list",
			key:   KeyFavorites,
			value: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Set(ctx, tt.key, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			var got []string
			found, err := store.Get(ctx, tt.key, &got)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !found {
				t.Fatal("Get() found = false, want true")
			}
			if len(got) != len(tt.value) {
				t.Fatalf("Get() = %v, want %v", got, tt.value)
			}
			for i := range got {
				if got[i] != tt.value[i] {
					t.Errorf("Get()[%d] = %v, want %v", i, got[i], tt.value[i])
				}
			}
		})
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSQLiteStore(db, "")

	var got map[string]int
	found, err := store.Get(context.Background(), "missing", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for missing key")
	}
	if got != nil {
		t.Errorf("Get() decoded %v for missing key", got)
	}
}

func TestSQLiteStore_Remove(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSQLiteStore(db, "")
	ctx := context.Background()

	store.Set(ctx, KeyRecent, []string{"noun:1"})

	if err := store.Remove(ctx, KeyRecent); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := store.Remove(ctx, KeyRecent); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}

	var got []string
	found, _ := store.Get(ctx, KeyRecent, &got)
	if found {
		t.Error("Get() found key after Remove()")
	}
}

func TestSQLiteStore_ClearKeepsOtherNamespaces(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSQLiteStore(db, "riyu_")
	other := NewSQLiteStore(db, "riyuX")
	ctx := context.Background()

	store.Set(ctx, KeyRecent, []string{"noun:1"})
	store.Set(ctx, KeyFavorites, []string{"noun:1"})
	other.Set(ctx, KeyRecent, []string{"verb:3"})

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() after Clear() = %v, want none", keys)
	}

	var got []string
	found, _ := other.Get(ctx, KeyRecent, &got)
	if !found || len(got) != 1 {
		t.Errorf("other namespace was cleared: found=%v value=%v", found, got)
	}
}

func TestTaskStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tasks := NewTaskStore(NewSQLiteStore(db, ""))
	ctx := context.Background()

	old := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	recent := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

	for _, task := range []models.DailyTask{
		{ID: "old", CreatedAt: old, Total: 1},
		{ID: "recent", CreatedAt: recent, Total: 2},
	} {
		if err := tasks.Append(ctx, task); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "old" || list[1].ID != "recent" {
		t.Fatalf("List() = %+v, want old then recent", list)
	}

	t.Run("complete existing", func(t *testing.T) {
		at := recent.Add(time.Hour)
		got, err := tasks.Complete(ctx, "recent", at)
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
			t.Errorf("Complete() = %+v", got)
		}
	})

	t.Run("complete missing", func(t *testing.T) {
		_, err := tasks.Complete(ctx, "nope", recent)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Complete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete before cutoff", func(t *testing.T) {
		removed, err := tasks.DeleteBefore(ctx, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local))
		if err != nil {
			t.Fatalf("DeleteBefore() error = %v", err)
		}
		if removed != 1 {
			t.Errorf("DeleteBefore() removed = %d, want 1", removed)
		}
		list, _ := tasks.List(ctx)
		if len(list) != 1 || list[0].ID != "recent" || !list[0].Completed {
			t.Errorf("List() after cleanup = %+v", list)
		}
	})
}

func TestPlanStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	plans := NewPlanStore(NewSQLiteStore(db, ""))
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(24 * time.Hour)

	plan := models.StudyPlan{
		ID:        "p1",
		Name:      "plan",
		Status:    models.PlanStatusActive,
		TotalDays: 2,
		Days: []models.PlanDay{
			{Day: 1},
			{Day: 2},
		},
	}

	saved, err := plans.Save(ctx, plan, created)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !saved.CreatedAt.Equal(created) || !saved.UpdatedAt.Equal(created) {
		t.Errorf("Save() timestamps = %v / %v, want %v", saved.CreatedAt, saved.UpdatedAt, created)
	}

	plan.Name = "renamed"
	plan.CreatedAt = created
	resaved, err := plans.Save(ctx, plan, updated)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if !resaved.UpdatedAt.Equal(updated) || !resaved.CreatedAt.Equal(created) {
		t.Errorf("second Save() timestamps = %v / %v", resaved.CreatedAt, resaved.UpdatedAt)
	}

	plan.CreatedAt = time.Time{}
	later := updated.Add(time.Hour)
	resaved, err = plans.Save(ctx, plan, later)
	if err != nil {
		t.Fatalf("Save() without createdAt error = %v", err)
	}
	if !resaved.CreatedAt.Equal(created) || !resaved.UpdatedAt.Equal(later) {
		t.Errorf("Save() without createdAt timestamps = %v / %v, want %v / %v", resaved.CreatedAt, resaved.UpdatedAt, created, later)
	}
	stored, err := plans.Get(ctx, "p1")
	if err != nil || !stored.CreatedAt.Equal(created) {
		t.Errorf("Get() after re-save = %v, %v, want createdAt %v", stored, err, created)
	}

	list, _ := plans.List(ctx)
	if len(list) != 1 || list[0].Name != "renamed" {
		t.Fatalf("List() = %+v, want one renamed plan", list)
	}

	active, err := plans.Active(ctx)
	if err != nil || active.ID != "p1" {
		t.Fatalf("Active() = %v, %v", active, err)
	}

	err = plans.Update(ctx, "p1", updated, func(p *models.StudyPlan) error {
		p.Status = models.PlanStatusCompleted
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := plans.Active(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Active() after completion error = %v, want ErrNotFound", err)
	}

	if err := plans.Update(ctx, "nope", updated, func(*models.StudyPlan) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing error = %v, want ErrNotFound", err)
	}

	if _, err := plans.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}

	if err := plans.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := plans.Delete(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
