package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/lehmann314159/tangocho/internal/dataset"
	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/repository"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// testModules returns module configs for the given types
func testModules(types ...string) []models.ModuleConfig {
	modules := make([]models.ModuleConfig, len(types))
	for i, typ := range types {
		modules[i] = models.ModuleConfig{Type: typ, Name: typ + "-name", Path: dataset.ModulePath(typ)}
	}
	return modules
}

// wordsJSON returns a dataset of n words with ids 1..n
func wordsJSON(t *testing.T, prefix string, n int) []byte {
	t.Helper()
	words := make([]map[string]any, n)
	for i := range words {
		words[i] = map[string]any{
			"id":      i + 1,
			"word":    fmt.Sprintf("%s%d", prefix, i+1),
			"kana":    fmt.Sprintf("かな%d", i+1),
			"meaning": fmt.Sprintf("meaning %d", i+1),
		}
	}
	data, err := json.Marshal(words)
	if err != nil {
		t.Fatalf("failed to marshal words: %v", err)
	}
	return data
}

// datasetFS builds a file system holding one dataset per module type
func datasetFS(t *testing.T, sizes map[string]int) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for typ, n := range sizes {
		fsys[dataset.ModulePath(typ)] = &fstest.MapFile{Data: wordsJSON(t, typ, n)}
	}
	return fsys
}

// failingLoader fails for the listed module types and delegates otherwise
type failingLoader struct {
	inner dataset.Loader
	fail  map[string]bool
}

func (l *failingLoader) Load(ctx context.Context, m models.ModuleConfig) ([]models.WordRecord, error) {
	if l.fail[m.Type] {
		return nil, errors.New("dataset unavailable")
	}
	return l.inner.Load(ctx, m)
}

// setupTestManager builds every service over an in-memory database and the
// given datasets. Module types missing from sizes fail to load.
func setupTestManager(t *testing.T, types []string, sizes map[string]int) (*ServiceManager, func()) {
	t.Helper()

	db, err := repository.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	fail := make(map[string]bool)
	for _, typ := range types {
		if _, ok := sizes[typ]; !ok {
			fail[typ] = true
		}
	}
	loader := &failingLoader{inner: dataset.NewFSLoader(datasetFS(t, sizes)), fail: fail}

	sm := NewServiceManager(repository.NewSQLiteStore(db, ""), loader, testModules(types...))
	sm.SetClock(fixedClock(testNow))

	cleanup := func() {
		db.Close()
	}

	return sm, cleanup
}

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, errors.New("store offline")
}

func (brokenStore) Set(ctx context.Context, key string, value any) error {
	return errors.New("store offline")
}

func (brokenStore) Remove(ctx context.Context, key string) error {
	return errors.New("store offline")
}

func (brokenStore) Clear(ctx context.Context) error {
	return errors.New("store offline")
}

// flakyStore wraps a working store and fails the next Get once armed
type flakyStore struct {
	repository.Store
	failNext bool
}

func (s *flakyStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s.failNext {
		s.failNext = false
		return false, errors.New("transient read error")
	}
	return s.Store.Get(ctx, key, dest)
}

func ref(moduleType string, id int) models.WordRef {
	return models.NewWordRef(moduleType, models.WordID(fmt.Sprint(id)))
}

func emptyTask() models.DailyTask {
	return models.DailyTask{
		Review: []models.ReviewCandidate{},
		New:    []models.NewWordTask{},
	}
}
