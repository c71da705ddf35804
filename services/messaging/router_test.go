package messaging

import (
	"context"
	"io"
	"testing"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/services/transcript"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeSummaries struct {
	result  *models.SummaryResult
	err     error
	keyErr  error
	lastKey string
}

func (f *fakeSummaries) Summarize(_ context.Context, _, videoTitle string) (*models.SummaryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.VideoTitle = videoTitle
	return &r, nil
}

func (f *fakeSummaries) TestAPIKey(_ context.Context, _ models.ProviderName, key string) error {
	f.lastKey = key
	return f.keyErr
}

func (f *fakeSummaries) Settings(context.Context) (*models.Settings, error) {
	return &models.Settings{}, nil
}

func (f *fakeSummaries) UpdateSettings(context.Context, models.Settings) (*models.Settings, error) {
	return &models.Settings{}, nil
}

type fakeFetcher struct {
	t   *transcript.Transcript
	err error
}

func (f fakeFetcher) GetTranscript(context.Context, string) (*transcript.Transcript, error) {
	return f.t, f.err
}

func newTestRouter(s *fakeSummaries, f fakeFetcher) *Router {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewRouter(s, f, l)
}

func TestRouterHandle(t *testing.T) {
	notFound := errors.NotFound("test", nil, transcript.MsgNoTranscript)
	authErr := errors.Auth("test", nil, "Invalid API key. Please check your OpenAI API key in settings.")
	videoID := "abc"
	configErr := errors.Configuration("test", nil, "No API key found for openai. Please configure your API key in settings.")

	tests := []struct {
		name      string
		summaries *fakeSummaries
		fetcher   fakeFetcher
		msg       Message
		want      interface{}
	}{
		{
			name:      "summarize",
			summaries: &fakeSummaries{result: &models.SummaryResult{Success: true, Summary: "short"}},
			msg:       Message{Action: ActionSummarize, Transcript: "text", VideoTitle: "Title"},
			want:      &models.SummaryResult{Success: true, Summary: "short", VideoTitle: "Title"},
		},
		{
			name:      "summarize failure",
			summaries: &fakeSummaries{err: configErr},
			msg:       Message{Action: ActionSummarize, Transcript: "text", VideoTitle: "Title"},
			want: &models.SummaryResult{
				Error:     "No API key found for openai. Please configure your API key in settings.",
				ErrorKind: "configuration",
			},
		},
		{
			name:      "test api key",
			summaries: &fakeSummaries{},
			msg:       Message{Action: ActionTestAPIKey, Provider: "openai", APIKey: "sk"},
			want:      &models.KeyTestResult{Success: true},
		},
		{
			name:      "test api key failure",
			summaries: &fakeSummaries{keyErr: authErr},
			msg:       Message{Action: ActionTestAPIKey, Provider: "openai", APIKey: "bad"},
			want:      &models.KeyTestResult{Error: "Invalid API key. Please check your OpenAI API key in settings."},
		},
		{
			name:      "get transcript",
			summaries: &fakeSummaries{},
			fetcher:   fakeFetcher{t: &transcript.Transcript{Text: "words", VideoTitle: "Video"}},
			msg:       Message{Action: ActionGetTranscript, URL: "https://www.youtube.com/watch?v=abc"},
			want:      &models.TranscriptResult{Success: true, Transcript: "words", VideoTitle: "Video"},
		},
		{
			name:      "get transcript failure",
			summaries: &fakeSummaries{},
			fetcher:   fakeFetcher{err: notFound},
			msg:       Message{Action: ActionGetTranscript, URL: "https://www.youtube.com/watch?v=abc"},
			want:      &models.TranscriptResult{Error: transcript.MsgNoTranscript},
		},
		{
			name:      "check watch page",
			summaries: &fakeSummaries{},
			msg:       Message{Action: ActionCheckYouTubePage, URL: "https://www.youtube.com/watch?v=abc"},
			want:      models.PageCheck{Success: true, IsYouTube: true, VideoID: &videoID},
		},
		{
			name:      "check other page",
			summaries: &fakeSummaries{},
			msg:       Message{Action: ActionCheckYouTubePage, URL: "https://www.youtube.com/feed/trending"},
			want:      models.PageCheck{Success: true},
		},
		{
			name:      "unknown action",
			summaries: &fakeSummaries{},
			msg:       Message{Action: "PING"},
			want:      &UnknownActionResult{Error: "Unknown action: PING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestRouter(tt.summaries, tt.fetcher).Handle(context.Background(), tt.msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouterPassesKeyThrough(t *testing.T) {
	s := &fakeSummaries{}
	newTestRouter(s, fakeFetcher{}).Handle(context.Background(),
		Message{Action: ActionTestAPIKey, Provider: "claude", APIKey: "sk-ant-123"})
	assert.Equal(t, "sk-ant-123", s.lastKey)
}
