package memory

import (
	"context"
	"testing"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore()

	if _, err := store.Get(ctx, "k"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	entry := &models.CacheEntry{Summary: "s", Timestamp: 1}
	if err := store.Set(ctx, "k", entry); err != nil {
		t.Fatal(err)
	}

	// mutating the caller's value must not change the stored copy
	entry.Summary = "changed"

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != "s" {
		t.Errorf("expected stored summary 's', got %q", got.Summary)
	}

	store.Delete(ctx, "k")
	if store.Len() != 0 {
		t.Errorf("expected empty store after delete")
	}
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(models.Settings{Provider: models.ProviderGemini})

	got, _ := store.Load(ctx)
	if got.Provider != models.ProviderGemini {
		t.Errorf("expected seeded provider, got %s", got.Provider)
	}

	got.Provider = models.ProviderClaude
	again, _ := store.Load(ctx)
	if again.Provider != models.ProviderGemini {
		t.Errorf("Load should return a copy")
	}

	store.Save(ctx, &models.Settings{Provider: models.ProviderClaude, ClaudeKey: "k"})
	again, _ = store.Load(ctx)
	if again.ClaudeKey != "k" {
		t.Errorf("expected saved key")
	}
}
