package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheStore keeps summary cache entries in Redis so several instances can
// share them. Keys are stored without expiry; staleness is judged by the
// entry timestamp on read.
type CacheStore struct {
	rdb    *goredis.Client
	logger *logrus.Logger
}

// NewCacheStore connects to redisURL and verifies the connection.
func NewCacheStore(ctx context.Context, redisURL string, logger *logrus.Logger) (*CacheStore, error) {
	const op = "RedisCacheStore.New"

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Configuration(op, err, "Invalid redis URL")
	}

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, errors.ServiceUnavailable(op, err, "Redis is unreachable")
	}

	logger.WithField("addr", opts.Addr).Info("Redis cache connected")
	return &CacheStore{rdb: rdb, logger: logger}, nil
}

// NewCacheStoreFromClient wraps an existing client.
func NewCacheStoreFromClient(rdb *goredis.Client, logger *logrus.Logger) *CacheStore {
	return &CacheStore{rdb: rdb, logger: logger}
}

func (s *CacheStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	const op = "RedisCacheStore.Get"

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, errors.NotFound(op, nil, "Cache entry not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to read cache entry")
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.WithFields(logrus.Fields{"op": op, "key": key}).WithError(err).Warn("Corrupt cache entry")
		return nil, errors.NotFound(op, err, "Cache entry not found")
	}
	return &entry, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, entry *models.CacheEntry) error {
	const op = "RedisCacheStore.Set"

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode cache entry")
	}
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Internal(op, err, "Failed to save cache entry")
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	const op = "RedisCacheStore.Delete"

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return errors.Internal(op, err, "Failed to delete cache entry")
	}
	return nil
}

func (s *CacheStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *CacheStore) Close() error {
	return s.rdb.Close()
}
