package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nijaru/summora/config"
	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfigs(endpoint string) map[models.ProviderName]models.ProviderConfig {
	cfgs := Configs(config.ProvidersConfig{
		OpenAI: config.ProviderConfig{Endpoint: endpoint + "/v1/chat/completions", Model: "gpt-4o-mini", MaxTokens: 500, Temperature: 0.7},
		Claude: config.ProviderConfig{Endpoint: endpoint + "/v1/messages", Model: "claude-3-5-haiku-20241022", MaxTokens: 500},
		Gemini: config.ProviderConfig{Endpoint: endpoint + "/v1beta/models/{model}:generateContent", Model: "gemini-1.5-flash", MaxTokens: 500, Temperature: 0.7},
	})
	return cfgs
}

func newTestProvider(t *testing.T, name models.ProviderName, endpoint string) Provider {
	t.Helper()
	p, err := New(testConfigs(endpoint)[name], WithLogger(quietLogger()))
	require.NoError(t, err)
	return p
}

func successBody(name models.ProviderName, text string) string {
	switch name {
	case models.ProviderOpenAI:
		return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, text)
	case models.ProviderClaude:
		return fmt.Sprintf(`{"content":[{"type":"text","text":%q}]}`, text)
	default:
		return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
	}
}

var allProviders = []models.ProviderName{models.ProviderOpenAI, models.ProviderClaude, models.ProviderGemini}

func TestSummarizeWireContracts(t *testing.T) {
	for _, name := range allProviders {
		t.Run(string(name), func(t *testing.T) {
			var (
				gotPath   string
				gotQuery  string
				gotHeader http.Header
				gotBody   map[string]interface{}
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				gotPath = r.URL.Path
				gotQuery = r.URL.Query().Get("key")
				gotHeader = r.Header.Clone()
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
				w.Write([]byte(successBody(name, "  • point one\n")))
			}))
			defer srv.Close()

			p := newTestProvider(t, name, srv.URL)
			summary, err := p.Summarize(context.Background(), "hello transcript", "secret-key", models.Options{})
			require.NoError(t, err)
			assert.Equal(t, "• point one", summary)
			assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))

			switch name {
			case models.ProviderOpenAI:
				assert.Equal(t, "/v1/chat/completions", gotPath)
				assert.Equal(t, "Bearer secret-key", gotHeader.Get("Authorization"))
				assert.Equal(t, "gpt-4o-mini", gotBody["model"])
				assert.Equal(t, float64(500), gotBody["max_tokens"])
				assert.Equal(t, 0.7, gotBody["temperature"])
				msgs := gotBody["messages"].([]interface{})
				require.Len(t, msgs, 2)
				assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
				assert.Equal(t, SummaryPrompt, msgs[0].(map[string]interface{})["content"])
				assert.Equal(t, "Please summarize this YouTube video transcript:\n\nhello transcript",
					msgs[1].(map[string]interface{})["content"])
			case models.ProviderClaude:
				assert.Equal(t, "/v1/messages", gotPath)
				assert.Equal(t, "secret-key", gotHeader.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", gotHeader.Get("anthropic-version"))
				assert.Equal(t, SummaryPrompt, gotBody["system"])
				assert.Equal(t, "claude-3-5-haiku-20241022", gotBody["model"])
				assert.NotContains(t, gotBody, "temperature")
			case models.ProviderGemini:
				assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
				assert.Equal(t, "secret-key", gotQuery)
				assert.Empty(t, gotHeader.Get("Authorization"))
				gen := gotBody["generationConfig"].(map[string]interface{})
				assert.Equal(t, float64(500), gen["maxOutputTokens"])
				assert.Equal(t, 0.7, gen["temperature"])
				parts := gotBody["contents"].([]interface{})[0].(map[string]interface{})["parts"].([]interface{})
				text := parts[0].(map[string]interface{})["text"].(string)
				assert.True(t, strings.HasPrefix(text, SummaryPrompt+"\n\n"))
				assert.True(t, strings.HasSuffix(text, "transcript:\n\nhello transcript"))
			}
		})
	}
}

func TestSummarizeAppliesOptions(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(successBody(models.ProviderOpenAI, "ok")))
	}))
	defer srv.Close()

	p := newTestProvider(t, models.ProviderOpenAI, srv.URL)
	_, err := p.Summarize(context.Background(), "t", "k", models.Options{
		Model:       "gpt-4o",
		MaxTokens:   50,
		Temperature: models.Float(0),
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Equal(t, float64(50), gotBody["max_tokens"])
	assert.Equal(t, float64(0), gotBody["temperature"])
}

func TestSummarizeTruncatesLongTranscripts(t *testing.T) {
	for _, name := range allProviders {
		t.Run(string(name), func(t *testing.T) {
			var raw []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				raw, _ = io.ReadAll(r.Body)
				w.Write([]byte(successBody(name, "ok")))
			}))
			defer srv.Close()

			transcript := strings.Repeat("ab", 10000) // 20000 runes
			p := newTestProvider(t, name, srv.URL)
			_, err := p.Summarize(context.Background(), transcript, "k", models.Options{})
			require.NoError(t, err)

			sent := strings.Repeat("ab", 6000) + "..."
			assert.Contains(t, string(raw), sent)
			assert.NotContains(t, string(raw), strings.Repeat("ab", 6001))
		})
	}
}

func TestSummarizeErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		provider models.ProviderName
		status   int
		body     string
		kind     errors.Kind
		message  string
	}{
		{"openai 401", models.ProviderOpenAI, 401, `{"error":{"message":"Incorrect API key"}}`, errors.KindAuth,
			"Invalid API key. Please check your OpenAI API key in settings."},
		{"claude 401", models.ProviderClaude, 401, `{}`, errors.KindAuth,
			"Invalid API key. Please check your Claude API key in settings."},
		{"gemini 400 api key", models.ProviderGemini, 400,
			`{"error":{"code":400,"message":"API key not valid.","details":[{"reason":"API_KEY_INVALID"}]}}`,
			errors.KindAuth, "Invalid API key. Please check your Gemini API key in settings."},
		{"gemini 400 other", models.ProviderGemini, 400, `{"error":{"message":"Invalid JSON payload"}}`,
			errors.KindProvider, "Gemini API error: Invalid JSON payload"},
		{"openai 429", models.ProviderOpenAI, 429, `{}`, errors.KindRateLimit,
			"Rate limit exceeded. Please try again later."},
		{"claude 503", models.ProviderClaude, 503, `overloaded`, errors.KindServiceUnavailable,
			"Claude service is temporarily unavailable. Please try again."},
		{"gemini 500", models.ProviderGemini, 500, ``, errors.KindServiceUnavailable,
			"Gemini service is temporarily unavailable. Please try again."},
		{"openai 404 no body", models.ProviderOpenAI, 404, `not json`, errors.KindProvider,
			"OpenAI API error: HTTP 404: Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := newTestProvider(t, tt.provider, srv.URL)
			_, err := p.Summarize(context.Background(), "t", "bad-key", models.Options{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Equal(t, tt.message, errors.Message(err))
		})
	}
}

func TestSummarizeFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider models.ProviderName
		body     string
		message  string
	}{
		{"openai empty choices", models.ProviderOpenAI, `{"choices":[]}`, "Unexpected response format from OpenAI"},
		{"claude missing content", models.ProviderClaude, `{"id":"msg"}`, "Unexpected response format from Claude"},
		{"gemini empty text", models.ProviderGemini, `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			"Unexpected response format from Gemini"},
		{"gemini no parts", models.ProviderGemini, `{"candidates":[{"content":{}}]}`,
			"Unexpected response format from Gemini"},
		{"malformed json", models.ProviderClaude, `{"content":[`, "Failed to parse Claude response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := newTestProvider(t, tt.provider, srv.URL)
			_, err := p.Summarize(context.Background(), "t", "k", models.Options{})
			assert.True(t, errors.IsFormat(err), "expected format error, got %v", err)
			assert.Equal(t, tt.message, errors.Message(err))
		})
	}
}

func TestSummarizeNetworkError(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	})}

	p, err := New(testConfigs("http://provider.invalid")[models.ProviderOpenAI],
		WithHTTPClient(client), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = p.Summarize(context.Background(), "t", "k", models.Options{})
	assert.True(t, errors.IsNetwork(err))
	assert.Equal(t, "Network error. Please check your internet connection.", errors.Message(err))
}

func TestSummarizeMakesExactlyOneCall(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     make(http.Header),
		}, nil
	})}

	p, err := New(testConfigs("http://provider.invalid")[models.ProviderClaude],
		WithHTTPClient(client), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = p.Summarize(context.Background(), "t", "k", models.Options{})
	assert.True(t, errors.IsServiceUnavailable(err))
	assert.Equal(t, 1, calls)
}

func TestRegistry(t *testing.T) {
	reg, err := NewDefaultRegistry(config.ProvidersConfig{
		OpenAI: config.ProviderConfig{Endpoint: "https://api.openai.com/v1/chat/completions", RequestsPerMinute: 60},
		Claude: config.ProviderConfig{Endpoint: "https://api.anthropic.com/v1/messages"},
		Gemini: config.ProviderConfig{Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent"},
	}, 0, quietLogger())
	require.NoError(t, err)

	assert.ElementsMatch(t, allProviders, reg.Names())
	p, ok := reg.Get(models.ProviderClaude)
	require.True(t, ok)
	assert.Equal(t, "Claude", p.DisplayName())

	_, ok = reg.Get("mistral")
	assert.False(t, ok)

	_, err = New(models.ProviderConfig{Name: "mistral"})
	assert.Error(t, err)
}

func TestTruncationBound(t *testing.T) {
	a := &adapter{truncateChars: DefaultTruncateChars}
	for _, n := range []int{0, 1, 11999, 12000, 12001, 50000} {
		req := a.resolve(strings.Repeat("x", n), "k", models.Options{})
		assert.LessOrEqual(t, utf8.RuneCountInString(req.transcript), DefaultTruncateChars+3)
		if n > DefaultTruncateChars {
			assert.True(t, strings.HasSuffix(req.transcript, "..."))
		}
	}
}
