package models

// TranscriptResult is the outcome of a page-side extraction.
type TranscriptResult struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	VideoTitle string `json:"videoTitle,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CaptionTrack is one entry of the player response caption track list.
type CaptionTrack struct {
	LanguageCode string `json:"languageCode"`
	BaseURL      string `json:"baseUrl"`
	Kind         string `json:"kind,omitempty"`
	Name         struct {
		SimpleText string `json:"simpleText,omitempty"`
	} `json:"name,omitempty"`
}

// PageCheck answers whether a URL is a YouTube watch page. VideoID is nil
// when the URL has no v parameter.
type PageCheck struct {
	Success   bool    `json:"success"`
	IsYouTube bool    `json:"isYouTube"`
	VideoID   *string `json:"videoId"`
}
