// Package memory provides process-local stores used for tests and for
// deployments that do not need persistence.
package memory

import (
	"context"
	"sync"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]models.CacheEntry)}
}

func (s *CacheStore) Get(_ context.Context, key string) (*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, errors.NotFound("MemoryCacheStore.Get", nil, "Cache entry not found")
	}
	return &entry, nil
}

func (s *CacheStore) Set(_ context.Context, key string, entry *models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = *entry
	return nil
}

func (s *CacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SettingsStore holds one Settings value. It doubles as the env backend
// when seeded from configuration.
type SettingsStore struct {
	mu       sync.RWMutex
	settings models.Settings
}

func NewSettingsStore(seed models.Settings) *SettingsStore {
	return &SettingsStore{settings: seed}
}

func (s *SettingsStore) Load(context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.settings
	return &settings, nil
}

func (s *SettingsStore) Save(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = *settings
	return nil
}
