package summary

import (
	"context"
	"fmt"
	"sync"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/repository"
	"github.com/nijaru/summora/services/cache"
	"github.com/nijaru/summora/services/provider"
	"github.com/nijaru/summora/utils"
	"github.com/nijaru/summora/validation"
	"github.com/sirupsen/logrus"
)

const msgInvalidProvider = "Invalid provider selected"

type service struct {
	cache     *cache.SummaryCache
	settings  repository.SettingsStore
	providers *provider.Registry
	validator *validation.Validator
	config    Config
	logger    *logrus.Logger

	inFlight sync.Map // cache key -> *sync.Mutex
}

func NewService(
	summaryCache *cache.SummaryCache,
	settings repository.SettingsStore,
	providers *provider.Registry,
	validator *validation.Validator,
	config Config,
	logger *logrus.Logger,
) Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &service{
		cache:     summaryCache,
		settings:  settings,
		providers: providers,
		validator: validator,
		config:    config,
		logger:    logger,
	}
}

func (s *service) Summarize(ctx context.Context, transcript, videoTitle string) (*models.SummaryResult, error) {
	const op = "SummaryService.Summarize"
	logger := s.logger.WithContext(ctx).WithField("op", op)

	if err := s.validator.ValidateTranscript(transcript); err != nil {
		return nil, err
	}

	if summary, ok := s.cache.Lookup(ctx, transcript); ok {
		logger.Debug("Summary served from cache")
		return success(summary, videoTitle), nil
	}

	if s.config.DedupeInFlight {
		unlock := s.lock(cache.Key(transcript))
		defer unlock()

		if summary, ok := s.cache.Lookup(ctx, transcript); ok {
			logger.Debug("Summary produced by concurrent request")
			return success(summary, videoTitle), nil
		}
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	name := settings.SelectedProvider()
	p, ok := s.providers.Get(name)
	if !ok {
		return nil, errors.Configuration(op, fmt.Errorf("unknown provider %q", name), msgInvalidProvider)
	}

	apiKey := settings.KeyFor(name)
	if apiKey == "" {
		return nil, errors.Configuration(op, nil,
			fmt.Sprintf("No API key found for %s. Please configure your API key in settings.", name))
	}

	logger = logger.WithFields(logrus.Fields{
		"provider": name,
		"api_key":  utils.MaskKey(apiKey),
	})

	summary, err := p.Summarize(ctx, transcript, apiKey, models.Options{})
	if err != nil {
		logger.WithError(err).Warn("Summarization failed")
		return nil, err
	}

	if err := s.cache.Store(ctx, transcript, summary); err != nil {
		logger.WithError(err).Warn("Failed to cache summary")
	}

	logger.WithField("length", len(summary)).Info("Summary generated")
	return success(summary, videoTitle), nil
}

func success(summary, videoTitle string) *models.SummaryResult {
	return &models.SummaryResult{Success: true, Summary: summary, VideoTitle: videoTitle}
}

// lock takes the per-key mutex and returns its release func. Mutexes are
// never removed; the map grows with the number of distinct transcripts
// summarized while dedupe is on.
func (s *service) lock(key string) func() {
	v, _ := s.inFlight.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *service) TestAPIKey(ctx context.Context, name models.ProviderName, key string) error {
	const op = "SummaryService.TestAPIKey"

	p, ok := s.providers.Get(name)
	if !ok {
		return errors.Configuration(op, fmt.Errorf("unknown provider %q", name), msgInvalidProvider)
	}
	if key == "" {
		return errors.InvalidInput(op, nil, "API key is required")
	}

	_, err := p.Summarize(ctx, provider.TestTranscript, key, models.Options{MaxTokens: provider.TestMaxTokens})
	if err != nil {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"op":       op,
			"provider": name,
			"api_key":  utils.MaskKey(key),
		}).WithError(err).Info("API key test failed")
		return err
	}
	return nil
}

func (s *service) Settings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return masked(settings), nil
}

func (s *service) UpdateSettings(ctx context.Context, update models.Settings) (*models.Settings, error) {
	const op = "SummaryService.UpdateSettings"

	if update.Provider != "" {
		if err := s.validator.ValidateProvider(string(update.Provider)); err != nil {
			return nil, err
		}
	}

	stored, err := s.settings.Load(ctx)
	if err != nil {
		return nil, errors.ServiceUnavailable(op, err, "Failed to load settings")
	}
	stored.Merge(update)
	if err := s.settings.Save(ctx, stored); err != nil {
		return nil, errors.ServiceUnavailable(op, err, "Failed to save settings")
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":       op,
		"provider": stored.SelectedProvider(),
	}).Info("Settings updated")

	return s.Settings(ctx)
}

// loadSettings returns the stored settings layered over the configured
// defaults.
func (s *service) loadSettings(ctx context.Context) (*models.Settings, error) {
	const op = "SummaryService.loadSettings"

	stored, err := s.settings.Load(ctx)
	if err != nil {
		return nil, errors.ServiceUnavailable(op, err, "Failed to load settings")
	}

	effective := s.config.Defaults
	effective.Merge(*stored)
	return &effective, nil
}

func masked(settings *models.Settings) *models.Settings {
	out := &models.Settings{Provider: settings.SelectedProvider()}
	for _, p := range []models.ProviderName{models.ProviderOpenAI, models.ProviderClaude, models.ProviderGemini} {
		out.SetKey(p, utils.MaskKey(settings.KeyFor(p)))
	}
	return out
}

// FailureResult converts err into the result shape returned to callers.
func FailureResult(err error) *models.SummaryResult {
	return &models.SummaryResult{
		Success:   false,
		Error:     errors.Message(err),
		ErrorKind: string(errors.KindOf(err)),
	}
}
