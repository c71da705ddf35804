package provider

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/nijaru/summora/models"
)

var formats = map[models.ProviderName]wireFormat{
	models.ProviderOpenAI: openAIFormat{},
	models.ProviderClaude: claudeFormat{},
	models.ProviderGemini: geminiFormat{},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func userMessage(req request) string {
	return userPreamble + "\n\n" + req.transcript
}

// OpenAI chat completions.

type openAIFormat struct{}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (openAIFormat) endpoint(cfg models.ProviderConfig, _ request) (string, error) {
	return cfg.Endpoint, nil
}

func (openAIFormat) headers(_ models.ProviderConfig, req request, h http.Header) {
	h.Set("Authorization", "Bearer "+req.apiKey)
}

func (openAIFormat) body(_ models.ProviderConfig, req request) interface{} {
	return openAIRequest{
		Model: req.model,
		Messages: []chatMessage{
			{Role: "system", Content: SummaryPrompt},
			{Role: "user", Content: userMessage(req)},
		},
		MaxTokens:   req.maxTokens,
		Temperature: req.temperature,
	}
}

func (openAIFormat) text(data []byte) (string, bool, error) {
	var resp openAIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Choices) == 0 {
		return "", false, nil
	}
	return resp.Choices[0].Message.Content, true, nil
}

func (openAIFormat) isAuthFailure(int, []byte) bool { return false }

// Anthropic messages.

type claudeFormat struct{}

type claudeRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (claudeFormat) endpoint(cfg models.ProviderConfig, _ request) (string, error) {
	return cfg.Endpoint, nil
}

func (claudeFormat) headers(cfg models.ProviderConfig, req request, h http.Header) {
	h.Set("x-api-key", req.apiKey)
	h.Set("anthropic-version", cfg.APIVersion)
}

func (claudeFormat) body(_ models.ProviderConfig, req request) interface{} {
	return claudeRequest{
		Model:       req.model,
		MaxTokens:   req.maxTokens,
		System:      SummaryPrompt,
		Messages:    []chatMessage{{Role: "user", Content: userMessage(req)}},
		Temperature: req.temperature,
	}
}

func (claudeFormat) text(data []byte) (string, bool, error) {
	var resp claudeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Content) == 0 {
		return "", false, nil
	}
	return resp.Content[0].Text, true, nil
}

func (claudeFormat) isAuthFailure(int, []byte) bool { return false }

// Google generateContent. The key travels as a query parameter and the
// prompt shares a single text part with the transcript.

type geminiFormat struct{}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     *float64 `json:"temperature,omitempty"`
		MaxOutputTokens int      `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (geminiFormat) endpoint(cfg models.ProviderConfig, req request) (string, error) {
	u, err := url.Parse(strings.ReplaceAll(cfg.Endpoint, "{model}", req.model))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", req.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (geminiFormat) headers(models.ProviderConfig, request, http.Header) {}

func (geminiFormat) body(_ models.ProviderConfig, req request) interface{} {
	var body geminiRequest
	body.Contents = []geminiContent{{
		Parts: []geminiPart{{Text: SummaryPrompt + "\n\n" + userMessage(req)}},
	}}
	body.GenerationConfig.Temperature = req.temperature
	body.GenerationConfig.MaxOutputTokens = req.maxTokens
	return body
}

func (geminiFormat) text(data []byte) (string, bool, error) {
	var resp geminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false, nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, true, nil
}

// Gemini rejects bad keys with 400 and an API_KEY reason.
func (geminiFormat) isAuthFailure(status int, body []byte) bool {
	return status == http.StatusBadRequest && bytes.Contains(body, []byte("API_KEY"))
}
