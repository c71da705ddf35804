package models

// ProviderConfig is the immutable description of one LLM backend.
type ProviderConfig struct {
	Name        ProviderName
	DisplayName string
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature *float64
	APIVersion  string
}

// Float returns a pointer to v, for optional temperature fields.
func Float(v float64) *float64 {
	return &v
}
