package transcript

import (
	"context"
	"net/url"

	"github.com/nijaru/summora/models"
	"github.com/sirupsen/logrus"
)

const DefaultCaptionFormat = "json3"

// CaptionLocator reads the caption track list embedded in the watch page
// and downloads the preferred track.
type CaptionLocator struct {
	format string
	logger *logrus.Logger
}

func NewCaptionLocator(format string, logger *logrus.Logger) *CaptionLocator {
	if format == "" {
		format = DefaultCaptionFormat
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CaptionLocator{format: format, logger: logger}
}

// Locate returns the transcript for videoID, or false when the page has no
// usable captions. Fetch failures are reported the same way as missing
// captions and are not retried.
func (l *CaptionLocator) Locate(ctx context.Context, page PageAccessor, videoID string) (string, bool) {
	const op = "CaptionLocator.Locate"
	logger := l.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":       op,
		"video_id": videoID,
	})

	scripts := page.Scripts()
	pr, strategy, ok := findPlayerResponse(scripts)
	if !ok {
		logger.WithField("scripts", len(scripts)).Debug("No player response found")
		return "", false
	}
	logger = logger.WithField("strategy", strategy)

	tracks := pr.captionTracks()
	if len(tracks) == 0 {
		logger.Debug("No caption tracks in player response")
		return "", false
	}

	track := SelectTrack(tracks)
	if track.BaseURL == "" {
		logger.WithField("language", track.LanguageCode).Debug("Caption track has no URL")
		return "", false
	}

	captionURL, err := CaptionURL(track.BaseURL, l.format)
	if err != nil {
		logger.WithError(err).Debug("Invalid caption URL")
		return "", false
	}

	status, body, err := page.Fetch(ctx, captionURL)
	if err != nil {
		logger.WithError(err).Warn("Caption fetch failed")
		return "", false
	}
	if status < 200 || status > 299 || body == "" {
		logger.WithFields(logrus.Fields{
			"status":      status,
			"body_length": len(body),
		}).Warn("Caption fetch returned no data")
		return "", false
	}

	text, ok := ParseCaptionData(body)
	if !ok {
		logger.Debug("Caption data could not be parsed")
		return "", false
	}

	logger.WithFields(logrus.Fields{
		"language": track.LanguageCode,
		"length":   len(text),
	}).Info("Transcript extracted from caption track")
	return text, true
}

// SelectTrack prefers the English track and otherwise takes the first one.
// tracks must not be empty.
func SelectTrack(tracks []models.CaptionTrack) models.CaptionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return t
		}
	}
	return tracks[0]
}

// CaptionURL merges fmt=format into baseURL's query, replacing any
// existing fmt value.
func CaptionURL(baseURL, format string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("fmt", format)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
