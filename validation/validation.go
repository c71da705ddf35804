package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

const watchHost = "www.youtube.com"

type Validator struct {
	maxTranscriptBytes int
}

func NewValidator() *Validator {
	return &Validator{maxTranscriptBytes: 2 * 1024 * 1024}
}

// ValidateURL checks that urlStr is an http(s) YouTube URL.
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	if strings.TrimSpace(urlStr) == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidInput(op, err, "Invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	if !IsYouTubeHost(parsedURL.Hostname()) {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	return nil
}

// CheckYouTubePage reports whether urlStr is a YouTube watch page and the
// video id from its v parameter. Only www.youtube.com/watch counts.
func CheckYouTubePage(urlStr string) models.PageCheck {
	result := models.PageCheck{Success: true}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return result
	}

	result.IsYouTube = parsedURL.Host == watchHost && parsedURL.Path == "/watch"
	if values, ok := parsedURL.Query()["v"]; ok {
		videoID := values[0]
		result.VideoID = &videoID
	}
	return result
}

// IsYouTubeHost reports whether host is youtube.com, one of its subdomains
// or youtu.be. host must not carry a port.
func IsYouTubeHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com")
}

// ValidateTranscript rejects empty or oversized transcripts.
func (v *Validator) ValidateTranscript(transcript string) error {
	const op = "Validator.ValidateTranscript"

	if strings.TrimSpace(transcript) == "" {
		return errors.InvalidInput(op, nil, "Transcript is required")
	}
	if len(transcript) > v.maxTranscriptBytes {
		return errors.InvalidInput(op, nil, "Transcript too large")
	}
	return nil
}

// ValidateProvider checks that name is one of the supported providers.
func (v *Validator) ValidateProvider(name string) error {
	const op = "Validator.ValidateProvider"

	if !models.ProviderName(name).Valid() {
		return errors.Configuration(op, nil, "Invalid provider selected")
	}
	return nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
