package provider

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/nijaru/summora/config"
	"github.com/nijaru/summora/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SummaryPrompt is the instruction sent with every summarization request.
const SummaryPrompt = `You are a helpful assistant that creates concise summaries of YouTube video transcripts.

Format your response EXACTLY as follows:
- First line: A clear, descriptive title for the video content
- Then list 5-8 key points, each starting with a bullet point (•)
- End with a brief conclusion (1-2 sentences) under "Conclusion:"

Keep the summary concise and focus on the main ideas and takeaways.`

const userPreamble = "Please summarize this YouTube video transcript:"

// TestTranscript and TestMaxTokens are used to validate an API key with a
// cheap request.
const (
	TestTranscript = "This is a test transcript to verify the API key works correctly."
	TestMaxTokens  = 50
)

const DefaultTruncateChars = 12000

// Provider turns a transcript into a summary using one LLM backend. Every
// returned error is an *errors.AppError.
type Provider interface {
	Name() models.ProviderName
	DisplayName() string
	Summarize(ctx context.Context, transcript, apiKey string, opts models.Options) (string, error)
}

// Configs builds the immutable per-provider configs from application config.
func Configs(cfg config.ProvidersConfig) map[models.ProviderName]models.ProviderConfig {
	return map[models.ProviderName]models.ProviderConfig{
		models.ProviderOpenAI: {
			Name:        models.ProviderOpenAI,
			DisplayName: "OpenAI",
			Endpoint:    cfg.OpenAI.Endpoint,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: models.Float(cfg.OpenAI.Temperature),
		},
		models.ProviderClaude: {
			Name:        models.ProviderClaude,
			DisplayName: "Claude",
			Endpoint:    cfg.Claude.Endpoint,
			Model:       cfg.Claude.Model,
			MaxTokens:   cfg.Claude.MaxTokens,
			APIVersion:  "2023-06-01",
		},
		models.ProviderGemini: {
			Name:        models.ProviderGemini,
			DisplayName: "Gemini",
			Endpoint:    cfg.Gemini.Endpoint,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: models.Float(cfg.Gemini.Temperature),
		},
	}
}

type Option func(*adapter)

func WithHTTPClient(client *http.Client) Option {
	return func(a *adapter) {
		a.client = client
	}
}

// WithLimiter makes the adapter wait for a token before each call.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(a *adapter) {
		a.limiter = limiter
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(a *adapter) {
		a.logger = logger
	}
}

func WithTruncateChars(n int) Option {
	return func(a *adapter) {
		if n > 0 {
			a.truncateChars = n
		}
	}
}

// New returns the adapter for cfg.Name.
func New(cfg models.ProviderConfig, opts ...Option) (Provider, error) {
	format, ok := formats[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}

	a := &adapter{
		cfg:           cfg,
		format:        format,
		client:        http.DefaultClient,
		logger:        logrus.StandardLogger(),
		truncateChars: DefaultTruncateChars,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Registry holds one Provider per name.
type Registry struct {
	providers map[models.ProviderName]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.ProviderName]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// NewDefaultRegistry builds adapters for all configured providers sharing
// one HTTP client. A RequestsPerMinute of zero leaves a provider unthrottled.
func NewDefaultRegistry(cfg config.ProvidersConfig, truncateChars int, logger *logrus.Logger) (*Registry, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	limits := map[models.ProviderName]int{
		models.ProviderOpenAI: cfg.OpenAI.RequestsPerMinute,
		models.ProviderClaude: cfg.Claude.RequestsPerMinute,
		models.ProviderGemini: cfg.Gemini.RequestsPerMinute,
	}

	var providers []Provider
	for name, pc := range Configs(cfg) {
		opts := []Option{
			WithHTTPClient(client),
			WithLogger(logger),
			WithTruncateChars(truncateChars),
		}
		if rpm := limits[name]; rpm > 0 {
			opts = append(opts, WithLimiter(rate.NewLimiter(rate.Limit(rpm)/60, 1)))
		}

		p, err := New(pc, opts...)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return NewRegistry(providers...), nil
}

func (r *Registry) Get(name models.ProviderName) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) Names() []models.ProviderName {
	names := make([]models.ProviderName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
