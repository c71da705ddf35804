package utils

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nijaru/summora/errors"
	"github.com/sirupsen/logrus"
)

// RespondWithJSON writes payload as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

// RespondWithError writes {"error": msg} using the AppError's status, or 500
// for foreign errors.
func RespondWithError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "Internal server error"
	if appErr, ok := errors.As(err); ok {
		code = appErr.Code
		msg = appErr.Message
	}

	logrus.WithFields(logrus.Fields{
		"status_code": code,
		"error":       err,
	}).Error("Request failed")

	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// CollapseWhitespace replaces every run of whitespace (including NBSP and
// newlines) with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes and appends "..." when it had to cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// MaskKey returns a short prefix of an API key suitable for logs.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	const visible = 4
	if utf8.RuneCountInString(key) <= visible*2 {
		return "****"
	}
	return string([]rune(key)[:visible]) + "****"
}
