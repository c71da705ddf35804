package models

// Options are per-request overrides for a provider call. Zero values fall
// back to the provider's configured defaults.
type Options struct {
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type SummaryRequest struct {
	Transcript string  `json:"transcript"`
	APIKey     string  `json:"-"`
	Options    Options `json:"options"`
}

type SummaryResult struct {
	Success    bool   `json:"success"`
	Summary    string `json:"summary,omitempty"`
	VideoTitle string `json:"videoTitle,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"errorKind,omitempty"`
}

// KeyTestResult is returned by an API key check.
type KeyTestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CacheEntry is the persisted form of a cached summary. Timestamp is unix
// milliseconds at write time.
type CacheEntry struct {
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}
