package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nijaru/summora/errors"
)

// errorBody is the error envelope shared by all three providers.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// providerMessage returns the provider's own error text, or a generic
// status line when the body is not the expected envelope.
func providerMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
}

func (a *adapter) classify(op string, status int, body []byte) *errors.AppError {
	name := a.cfg.DisplayName
	cause := fmt.Errorf("%s responded %d: %s", a.cfg.Name, status, providerMessage(status, body))

	switch {
	case status == http.StatusUnauthorized || a.format.isAuthFailure(status, body):
		return errors.Auth(op, cause, fmt.Sprintf("Invalid API key. Please check your %s API key in settings.", name))
	case status == http.StatusTooManyRequests:
		return errors.RateLimit(op, cause, "Rate limit exceeded. Please try again later.")
	case status >= 500:
		return errors.ServiceUnavailable(op, cause, fmt.Sprintf("%s service is temporarily unavailable. Please try again.", name))
	default:
		return errors.Provider(op, cause, fmt.Sprintf("%s API error: %s", name, providerMessage(status, body)))
	}
}
