package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := Auth("op", nil, "test message")
	if err.Error() != "test message" {
		t.Errorf("expected error string 'test message', got '%s'", err.Error())
	}

	cause := fmt.Errorf("cause error")
	err = Internal("op", cause, "test message")
	expected := "test message: cause error"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{
			name:     "not found error",
			err:      NotFound("op", nil, "not found"),
			expected: KindNotFound,
		},
		{
			name:     "wrapped rate limit error",
			err:      Wrap(RateLimit("op", nil, "slow down"), "calling provider"),
			expected: KindRateLimit,
		},
		{
			name:     "non-custom error",
			err:      fmt.Errorf("standard error"),
			expected: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"configuration", Configuration("op", nil, "no key"), http.StatusBadRequest},
		{"auth", Auth("op", nil, "bad key"), http.StatusUnauthorized},
		{"rate limit", RateLimit("op", nil, "slow"), http.StatusTooManyRequests},
		{"service unavailable", ServiceUnavailable("op", nil, "down"), http.StatusServiceUnavailable},
		{"format", Format("op", nil, "bad shape"), http.StatusBadGateway},
		{"network", Network("op", nil, "offline"), http.StatusBadGateway},
		{"not found", NotFound("op", nil, "missing"), http.StatusNotFound},
		{"internal", Internal("op", nil, "boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, tt.err.Code)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Wrap(Network("op", nil, "Network error"), "ctx")); got != "Network error" {
		t.Errorf("expected 'Network error', got '%s'", got)
	}
	if got := Message(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("expected 'plain', got '%s'", got)
	}
	if got := Message(nil); got != "" {
		t.Errorf("expected empty message, got '%s'", got)
	}
}
