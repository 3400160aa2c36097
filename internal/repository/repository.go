package repository

import (
	"context"
	"errors"
)

// Keys of the persisted structures, relative to the store prefix
const (
	KeyRecent     = "recent"
	KeyFavorites  = "favorites"
	KeyStudyStats = "study_stats"
	KeyDailyTasks = "daily_tasks"
	KeyStudyPlans = "study_plans"
)

// DefaultPrefix namespaces every key written by the application
const DefaultPrefix = "riyu_"

// ErrNotFound is returned when a task or plan id is unknown
var ErrNotFound = errors.New("not found")

// Store defines the interface for namespaced key-value persistence
type Store interface {
	// Get decodes the value stored under key into dest and reports whether
	// the key existed
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set encodes value and stores it under key
	Set(ctx context.Context, key string, value any) error

	// Remove deletes key
	Remove(ctx context.Context, key string) error

	// Clear deletes every key in the store's namespace
	Clear(ctx context.Context) error
}
