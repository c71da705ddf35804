package messaging

import (
	"context"
	"fmt"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/services/summary"
	"github.com/nijaru/summora/services/transcript"
	"github.com/nijaru/summora/validation"
	"github.com/sirupsen/logrus"
)

type Action string

const (
	ActionSummarize        Action = "SUMMARIZE"
	ActionTestAPIKey       Action = "TEST_API_KEY"
	ActionGetTranscript    Action = "GET_TRANSCRIPT"
	ActionCheckYouTubePage Action = "CHECK_YOUTUBE_PAGE"
)

// Message is the request shape shared by every action. Fields not used by
// an action are ignored.
type Message struct {
	Action     Action `json:"action"`
	Transcript string `json:"transcript,omitempty"`
	VideoTitle string `json:"videoTitle,omitempty"`
	Provider   string `json:"provider,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
	URL        string `json:"url,omitempty"`
}

// UnknownActionResult answers messages whose action has no handler.
type UnknownActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// TranscriptFetcher loads a page by URL and extracts its transcript.
type TranscriptFetcher interface {
	GetTranscript(ctx context.Context, rawURL string) (*transcript.Transcript, error)
}

// Router dispatches messages to the summary and transcript services. It
// never returns an error: failures are folded into the result value.
type Router struct {
	summaries   summary.Service
	transcripts TranscriptFetcher
	logger      *logrus.Logger
}

func NewRouter(summaries summary.Service, transcripts TranscriptFetcher, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Router{summaries: summaries, transcripts: transcripts, logger: logger}
}

func (r *Router) Handle(ctx context.Context, msg Message) interface{} {
	const op = "Router.Handle"
	r.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":     op,
		"action": msg.Action,
	}).Debug("Handling message")

	switch msg.Action {
	case ActionSummarize:
		return r.summarize(ctx, msg)
	case ActionTestAPIKey:
		return r.testAPIKey(ctx, msg)
	case ActionGetTranscript:
		return r.getTranscript(ctx, msg)
	case ActionCheckYouTubePage:
		return validation.CheckYouTubePage(msg.URL)
	default:
		return &UnknownActionResult{Error: fmt.Sprintf("Unknown action: %s", msg.Action)}
	}
}

func (r *Router) summarize(ctx context.Context, msg Message) *models.SummaryResult {
	result, err := r.summaries.Summarize(ctx, msg.Transcript, msg.VideoTitle)
	if err != nil {
		return summary.FailureResult(err)
	}
	return result
}

func (r *Router) testAPIKey(ctx context.Context, msg Message) *models.KeyTestResult {
	if err := r.summaries.TestAPIKey(ctx, models.ProviderName(msg.Provider), msg.APIKey); err != nil {
		return &models.KeyTestResult{Error: errors.Message(err)}
	}
	return &models.KeyTestResult{Success: true}
}

func (r *Router) getTranscript(ctx context.Context, msg Message) *models.TranscriptResult {
	t, err := r.transcripts.GetTranscript(ctx, msg.URL)
	if err != nil {
		return &models.TranscriptResult{Error: errors.Message(err)}
	}
	return &models.TranscriptResult{
		Success:    true,
		Transcript: t.Text,
		VideoTitle: t.VideoTitle,
	}
}
