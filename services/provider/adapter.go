package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// request is a provider call after defaults have been applied.
type request struct {
	model       string
	maxTokens   int
	temperature *float64
	transcript  string
	apiKey      string
}

// wireFormat captures everything that differs between providers.
type wireFormat interface {
	// endpoint returns the URL to POST to.
	endpoint(cfg models.ProviderConfig, req request) (string, error)
	headers(cfg models.ProviderConfig, req request, h http.Header)
	body(cfg models.ProviderConfig, req request) interface{}
	// text pulls the summary out of a decoded success response.
	text(data []byte) (string, bool, error)
	// isAuthFailure reports provider-specific credential rejections beyond 401.
	isAuthFailure(status int, body []byte) bool
}

type adapter struct {
	cfg           models.ProviderConfig
	format        wireFormat
	client        *http.Client
	limiter       *rate.Limiter
	logger        *logrus.Logger
	truncateChars int
}

func (a *adapter) Name() models.ProviderName { return a.cfg.Name }
func (a *adapter) DisplayName() string       { return a.cfg.DisplayName }

func (a *adapter) Summarize(ctx context.Context, transcript, apiKey string, opts models.Options) (string, error) {
	op := "Provider.Summarize." + string(a.cfg.Name)
	name := a.cfg.DisplayName

	req := a.resolve(transcript, apiKey, opts)
	logger := a.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":                op,
		"model":             req.model,
		"max_tokens":        req.maxTokens,
		"api_key":           utils.MaskKey(apiKey),
		"transcript_length": utf8.RuneCountInString(transcript),
		"sent_length":       utf8.RuneCountInString(req.transcript),
	})

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", errors.RateLimit(op, err, "Rate limit exceeded. Please try again later.")
		}
	}

	endpoint, err := a.format.endpoint(a.cfg, req)
	if err != nil {
		return "", errors.Configuration(op, err, fmt.Sprintf("Invalid %s endpoint", name))
	}

	payload, err := json.Marshal(a.format.body(a.cfg, req))
	if err != nil {
		return "", errors.Internal(op, err, fmt.Sprintf("Failed to encode %s request", name))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Configuration(op, err, fmt.Sprintf("Invalid %s endpoint", name))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	a.format.headers(a.cfg, req, httpReq.Header)

	logger.Debug("Sending summarization request")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		logger.WithError(err).Warn("Provider request failed")
		return "", errors.Network(op, err, "Network error. Please check your internet connection.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Network(op, err, "Network error. Please check your internet connection.")
	}

	logger = logger.WithField("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := a.classify(op, resp.StatusCode, body)
		logger.WithField("kind", appErr.Kind).Warn("Provider returned an error")
		return "", appErr
	}

	text, ok, err := a.format.text(body)
	if err != nil {
		logger.WithError(err).Warn("Provider response was not valid JSON")
		return "", errors.Format(op, err, fmt.Sprintf("Failed to parse %s response", name))
	}
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		logger.Warn("Provider response missing summary text")
		return "", errors.Format(op, nil, fmt.Sprintf("Unexpected response format from %s", name))
	}

	logger.WithField("summary_length", utf8.RuneCountInString(text)).Info("Summarization succeeded")
	return text, nil
}

// resolve applies per-request overrides on top of the provider defaults and
// truncates the transcript.
func (a *adapter) resolve(transcript, apiKey string, opts models.Options) request {
	req := request{
		model:       a.cfg.Model,
		maxTokens:   a.cfg.MaxTokens,
		temperature: a.cfg.Temperature,
		transcript:  utils.Truncate(transcript, a.truncateChars),
		apiKey:      apiKey,
	}
	if opts.Model != "" {
		req.model = opts.Model
	}
	if opts.MaxTokens > 0 {
		req.maxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		req.temperature = opts.Temperature
	}
	return req
}
