package sqlite

import (
	"context"
	"database/sql"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

type CacheStore struct {
	db *DB
}

func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

func (s *CacheStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	const op = "SQLiteCacheStore.Get"

	entry := &models.CacheEntry{}
	err := s.db.statements.getCache.QueryRowContext(ctx, key).Scan(&entry.Summary, &entry.Timestamp)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Cache entry not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query cache entry")
	}

	return entry, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, entry *models.CacheEntry) error {
	const op = "SQLiteCacheStore.Set"

	err := s.db.withRetry(ctx, op, func() error {
		_, err := s.db.statements.upsertCache.ExecContext(ctx, key, entry.Summary, entry.Timestamp)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save cache entry")
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	const op = "SQLiteCacheStore.Delete"

	err := s.db.withRetry(ctx, op, func() error {
		_, err := s.db.statements.deleteCache.ExecContext(ctx, key)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to delete cache entry")
	}
	return nil
}
