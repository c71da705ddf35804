package repository

import (
	"context"

	"github.com/nijaru/summora/models"
)

// CacheStore persists summaries keyed by transcript hash. Get returns a
// NotFound error when the key is absent. Entries are never evicted by the
// store itself; expiry is decided by the reader.
type CacheStore interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Set(ctx context.Context, key string, entry *models.CacheEntry) error
	Delete(ctx context.Context, key string) error
}

// SettingsStore persists the provider choice and API keys. Load returns
// empty settings, not an error, when nothing has been saved yet.
type SettingsStore interface {
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}
