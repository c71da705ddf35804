package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := DefaultDBConfig()
	cfg.MaxConnections = 1
	cfg.MaxIdleConnections = 1

	db, err := Open(context.Background(), "file::memory:", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(openTestDB(t))

	_, err := store.Get(ctx, "summary_cache_missing")
	assert.True(t, errors.IsNotFound(err), "expected not found, got %v", err)

	entry := &models.CacheEntry{Summary: "first", Timestamp: 1000}
	require.NoError(t, store.Set(ctx, "summary_cache_abc", entry))

	got, err := store.Get(ctx, "summary_cache_abc")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	require.NoError(t, store.Set(ctx, "summary_cache_abc", &models.CacheEntry{Summary: "second", Timestamp: 2000}))
	got, err = store.Get(ctx, "summary_cache_abc")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Summary)
	assert.Equal(t, int64(2000), got.Timestamp)

	require.NoError(t, store.Delete(ctx, "summary_cache_abc"))
	_, err = store.Get(ctx, "summary_cache_abc")
	assert.True(t, errors.IsNotFound(err))
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(openTestDB(t))

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Settings{}, empty)
	assert.Equal(t, models.ProviderOpenAI, empty.SelectedProvider())

	want := &models.Settings{Provider: models.ProviderClaude, ClaudeKey: "sk-ant-123"}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.ClaudeKey = ""
	require.NoError(t, store.Save(ctx, want))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.ClaudeKey)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(context.Background(), path, DefaultDBConfig())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}
