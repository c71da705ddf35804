package summary

import (
	"context"

	"github.com/nijaru/summora/models"
)

type Service interface {
	// Summarize returns a summary for transcript, served from the cache
	// when a fresh entry exists.
	Summarize(ctx context.Context, transcript, videoTitle string) (*models.SummaryResult, error)

	// TestAPIKey sends a short fixed transcript to provider using key.
	TestAPIKey(ctx context.Context, provider models.ProviderName, key string) error

	// Settings returns the effective settings with keys masked.
	Settings(ctx context.Context) (*models.Settings, error)

	// UpdateSettings overlays the non-empty fields of update onto the
	// stored settings.
	UpdateSettings(ctx context.Context, update models.Settings) (*models.Settings, error)
}

type Config struct {
	// Defaults fill any field the settings store leaves empty.
	Defaults models.Settings

	// DedupeInFlight serializes concurrent misses for the same transcript
	// so only the first one calls the provider.
	DedupeInFlight bool
}
