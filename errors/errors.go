package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an AppError so callers can render actionable guidance
// without parsing messages.
type Kind string

const (
	KindConfiguration      Kind = "configuration"
	KindAuth               Kind = "auth"
	KindRateLimit          Kind = "rate_limit"
	KindServiceUnavailable Kind = "service_unavailable"
	KindFormat             Kind = "format"
	KindNetwork            Kind = "network"
	KindNotFound           Kind = "not_found"
	KindProvider           Kind = "provider"
	KindInvalidInput       Kind = "invalid_input"
	KindInternal           Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// E builds an AppError of the given kind. The HTTP status is derived from the kind.
func E(kind Kind, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusFor(kind),
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Configuration(op string, err error, message string) *AppError {
	return E(KindConfiguration, op, err, message)
}

func Auth(op string, err error, message string) *AppError {
	return E(KindAuth, op, err, message)
}

func RateLimit(op string, err error, message string) *AppError {
	return E(KindRateLimit, op, err, message)
}

func ServiceUnavailable(op string, err error, message string) *AppError {
	return E(KindServiceUnavailable, op, err, message)
}

func Format(op string, err error, message string) *AppError {
	return E(KindFormat, op, err, message)
}

func Network(op string, err error, message string) *AppError {
	return E(KindNetwork, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return E(KindNotFound, op, err, message)
}

func Provider(op string, err error, message string) *AppError {
	return E(KindProvider, op, err, message)
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(KindInvalidInput, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(KindInternal, op, err, message)
}

// Wrap annotates err with a stack trace and message. It is a thin alias so
// callers importing this package do not also need github.com/pkg/errors.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err.
func Message(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }
func IsAuth(err error) bool          { return KindOf(err) == KindAuth }
func IsRateLimit(err error) bool     { return KindOf(err) == KindRateLimit }
func IsNetwork(err error) bool       { return KindOf(err) == KindNetwork }
func IsFormat(err error) bool        { return KindOf(err) == KindFormat }

func IsServiceUnavailable(err error) bool {
	return KindOf(err) == KindServiceUnavailable
}

// StatusFor maps a kind onto the HTTP status used by the API layer.
func StatusFor(kind Kind) int {
	switch kind {
	case KindConfiguration, KindInvalidInput:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindFormat, KindNetwork, KindProvider:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
