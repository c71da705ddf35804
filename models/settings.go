package models

type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderClaude ProviderName = "claude"
	ProviderGemini ProviderName = "gemini"

	DefaultProvider = ProviderOpenAI
)

func (p ProviderName) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
		return true
	}
	return false
}

// Settings are the user's provider choice and per-provider keys.
type Settings struct {
	Provider  ProviderName `json:"provider"`
	OpenAIKey string       `json:"openaiKey,omitempty"`
	ClaudeKey string       `json:"claudeKey,omitempty"`
	GeminiKey string       `json:"geminiKey,omitempty"`
}

// SelectedProvider returns the configured provider, defaulting to openai.
func (s *Settings) SelectedProvider() ProviderName {
	if s == nil || s.Provider == "" {
		return DefaultProvider
	}
	return s.Provider
}

// KeyFor returns the stored key for p, or "" when none is set.
func (s *Settings) KeyFor(p ProviderName) string {
	if s == nil {
		return ""
	}
	switch p {
	case ProviderOpenAI:
		return s.OpenAIKey
	case ProviderClaude:
		return s.ClaudeKey
	case ProviderGemini:
		return s.GeminiKey
	}
	return ""
}

// SetKey stores key for p. Unknown providers are ignored.
func (s *Settings) SetKey(p ProviderName, key string) {
	switch p {
	case ProviderOpenAI:
		s.OpenAIKey = key
	case ProviderClaude:
		s.ClaudeKey = key
	case ProviderGemini:
		s.GeminiKey = key
	}
}

// Merge overlays non-empty fields of other onto s.
func (s *Settings) Merge(other Settings) {
	if other.Provider != "" {
		s.Provider = other.Provider
	}
	for _, p := range []ProviderName{ProviderOpenAI, ProviderClaude, ProviderGemini} {
		if k := other.KeyFor(p); k != "" {
			s.SetKey(p, k)
		}
	}
}
