package cache

import (
	"context"
	"time"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/repository"
	"github.com/sirupsen/logrus"
)

const DefaultTTL = 7 * 24 * time.Hour

// SummaryCache maps transcripts to summaries with a fixed freshness window.
// Expired entries are treated as misses but left in the store.
type SummaryCache struct {
	store  repository.CacheStore
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

type Option func(*SummaryCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *SummaryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SummaryCache) {
		c.now = now
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *SummaryCache) {
		c.logger = logger
	}
}

func New(store repository.CacheStore, opts ...Option) *SummaryCache {
	c := &SummaryCache{
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the cached summary for transcript if one exists and is
// younger than the TTL. Store failures are logged and reported as a miss.
func (c *SummaryCache) Lookup(ctx context.Context, transcript string) (string, bool) {
	const op = "SummaryCache.Lookup"
	key := Key(transcript)

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.IsNotFound(err) {
			c.logger.WithContext(ctx).WithFields(logrus.Fields{
				"op":  op,
				"key": key,
			}).WithError(err).Warn("Cache read failed")
		}
		return "", false
	}

	age := c.now().Sub(time.UnixMilli(entry.Timestamp))
	if age >= c.ttl {
		c.logger.WithContext(ctx).WithFields(logrus.Fields{
			"op":  op,
			"key": key,
			"age": age.String(),
		}).Debug("Cache entry expired")
		return "", false
	}

	return entry.Summary, true
}

// Store records summary for transcript stamped with the current time.
func (c *SummaryCache) Store(ctx context.Context, transcript, summary string) error {
	return c.store.Set(ctx, Key(transcript), &models.CacheEntry{
		Summary:   summary,
		Timestamp: c.now().UnixMilli(),
	})
}

func (c *SummaryCache) TTL() time.Duration {
	return c.ttl
}
