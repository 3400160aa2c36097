package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// entry is one row of the kv table
type entry struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SQLiteStore implements Store on a single SQLite table
type SQLiteStore struct {
	db     *sqlx.DB
	prefix string
}

// NewSQLiteStore creates a new store. An empty prefix means DefaultPrefix.
func NewSQLiteStore(db *sqlx.DB, prefix string) *SQLiteStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SQLiteStore{db: db, prefix: prefix}
}

// Prefix returns the namespace of the store
func (s *SQLiteStore) Prefix() string {
	return s.prefix
}

func (s *SQLiteStore) key(key string) string {
	return s.prefix + key
}

// Get decodes the value stored under key into dest
func (s *SQLiteStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, s.key(key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set encodes value and upserts it under key
func (s *SQLiteStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	e := entry{Key: s.key(key), Value: string(data), UpdatedAt: time.Now()}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (:key, :value, :updated_at)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		e,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key(key)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the store prefix and leaves other
// namespaces alone
func (s *SQLiteStore) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("failed to build clear query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Keys lists the full keys stored under the prefix
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	var all []string
	if err := s.db.SelectContext(ctx, &all, `SELECT key FROM kv ORDER BY key`); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	// LIKE would treat "_" in the prefix as a wildcard
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, s.prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
