package transcript

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/nijaru/summora/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerScript(tracks string) string {
	return fmt.Sprintf(`var ytInitialPlayerResponse = {"videoDetails":{"videoId":"abc"},`+
		`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}}};var meta = 1;`, tracks)
}

func TestSelectTrack(t *testing.T) {
	fr := models.CaptionTrack{LanguageCode: "fr", BaseURL: "https://x/fr"}
	en := models.CaptionTrack{LanguageCode: "en", BaseURL: "https://x/en"}

	assert.Equal(t, en, SelectTrack([]models.CaptionTrack{fr, en}))
	assert.Equal(t, fr, SelectTrack([]models.CaptionTrack{fr}))
}

func TestCaptionURL(t *testing.T) {
	tests := []struct {
		base string
		want url.Values
	}{
		{"https://www.youtube.com/api/timedtext?v=abc&lang=en", url.Values{"v": {"abc"}, "lang": {"en"}, "fmt": {"json3"}}},
		{"https://www.youtube.com/api/timedtext?v=abc&fmt=srv3", url.Values{"v": {"abc"}, "fmt": {"json3"}}},
		{"https://www.youtube.com/api/timedtext", url.Values{"fmt": {"json3"}}},
	}

	for _, tt := range tests {
		got, err := CaptionURL(tt.base, "json3")
		require.NoError(t, err)
		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, tt.want, u.Query(), tt.base)
		assert.Equal(t, "/api/timedtext", u.Path)
	}
}

func TestLocate(t *testing.T) {
	const json3 = `{"events":[{"segs":[{"utf8":"Hello"}]},{"segs":[{"utf8":"world"}]}]}`

	tests := []struct {
		name      string
		scripts   []string
		fetch     func(string) (int, string, error)
		want      string
		wantOK    bool
		wantFetch string
	}{
		{
			name:    "prefers english track",
			scripts: []string{playerScript(`[{"languageCode":"fr","baseUrl":"https://yt/tt?lang=fr"},{"languageCode":"en","baseUrl":"https://yt/tt?lang=en"}]`)},
			fetch: func(string) (int, string, error) {
				return 200, json3, nil
			},
			want:      "Hello world",
			wantOK:    true,
			wantFetch: "https://yt/tt?fmt=json3&lang=en",
		},
		{
			name:    "falls back to first track",
			scripts: []string{playerScript(`[{"languageCode":"fr","baseUrl":"https://yt/tt?lang=fr"}]`)},
			fetch: func(string) (int, string, error) {
				return 200, `<transcript><text>Bonjour</text></transcript>`, nil
			},
			want:      "Bonjour",
			wantOK:    true,
			wantFetch: "https://yt/tt?fmt=json3&lang=fr",
		},
		{
			name:    "no caption tracks",
			scripts: []string{playerScript(`[]`)},
		},
		{
			name:    "no captions object",
			scripts: []string{`var ytInitialPlayerResponse = {"playabilityStatus":{}};var x;`},
		},
		{
			name:    "no player response",
			scripts: []string{`console.log("hi")`},
		},
		{
			name:    "fetch non-2xx",
			scripts: []string{playerScript(`[{"languageCode":"en","baseUrl":"https://yt/tt"}]`)},
			fetch: func(string) (int, string, error) {
				return 403, "forbidden", nil
			},
			wantFetch: "https://yt/tt?fmt=json3",
		},
		{
			name:    "fetch empty body",
			scripts: []string{playerScript(`[{"languageCode":"en","baseUrl":"https://yt/tt"}]`)},
			fetch: func(string) (int, string, error) {
				return 200, "", nil
			},
			wantFetch: "https://yt/tt?fmt=json3",
		},
		{
			name:    "fetch transport error",
			scripts: []string{playerScript(`[{"languageCode":"en","baseUrl":"https://yt/tt"}]`)},
			fetch: func(string) (int, string, error) {
				return 0, "", fmt.Errorf("connection reset")
			},
			wantFetch: "https://yt/tt?fmt=json3",
		},
		{
			name:    "unparseable caption body",
			scripts: []string{playerScript(`[{"languageCode":"en","baseUrl":"https://yt/tt"}]`)},
			fetch: func(string) (int, string, error) {
				return 200, "garbage", nil
			},
			wantFetch: "https://yt/tt?fmt=json3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage("https://www.youtube.com/watch?v=abc")
			page.scripts = tt.scripts
			page.fetch = tt.fetch

			locator := NewCaptionLocator("", quietLogger())
			got, ok := locator.Locate(context.Background(), page, "abc")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if tt.wantFetch == "" {
				assert.Empty(t, page.fetched)
			} else {
				require.Len(t, page.fetched, 1, "caption fetch must not be retried")
				assert.Equal(t, tt.wantFetch, page.fetched[0])
			}
		})
	}
}
