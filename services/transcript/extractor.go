package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/validation"
	"github.com/sirupsen/logrus"
)

const (
	titleSelector = `h1.ytd-watch-metadata yt-formatted-string`
	UnknownTitle  = "Unknown Video"

	MsgNoVideoID    = "No video ID found. Please open a YouTube video."
	MsgNoTranscript = "No transcript available for this video. The video may not have captions enabled."
)

// Method is one way of getting a transcript off a page.
type Method struct {
	Name string
	Run  func(ctx context.Context, page PageAccessor, videoID string) (string, bool)
}

// Transcript is a successful extraction.
type Transcript struct {
	Text       string
	VideoTitle string
	Method     string
}

type Extractor struct {
	methods []Method
	logger  *logrus.Logger
}

type Options struct {
	CaptionFormat string
	SettleDelay   time.Duration
	Logger        *logrus.Logger
}

// NewExtractor tries the embedded caption tracks first and the transcript
// panel second.
func NewExtractor(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	locator := NewCaptionLocator(opts.CaptionFormat, logger)
	scraper := NewPanelScraper(opts.SettleDelay, logger)

	return NewExtractorWithMethods(logger,
		Method{Name: "caption-track", Run: locator.Locate},
		Method{Name: "transcript-panel", Run: func(ctx context.Context, page PageAccessor, _ string) (string, bool) {
			return scraper.Scrape(ctx, page)
		}},
	)
}

func NewExtractorWithMethods(logger *logrus.Logger, methods ...Method) *Extractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Extractor{methods: methods, logger: logger}
}

// Extract runs the methods in order and returns the first transcript found.
// Errors are NotFound AppErrors carrying a user-facing message.
func (e *Extractor) Extract(ctx context.Context, page PageAccessor) (*Transcript, error) {
	const op = "Extractor.Extract"

	videoID := ""
	if loc := page.Location(); loc != nil {
		videoID = loc.Query().Get("v")
	}
	if videoID == "" {
		return nil, errors.NotFound(op, nil, MsgNoVideoID)
	}

	logger := e.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":       op,
		"video_id": videoID,
	})
	title := VideoTitle(page)

	for _, m := range e.methods {
		if err := ctx.Err(); err != nil {
			return nil, errors.Network(op, err, "Request cancelled")
		}
		text, ok := m.Run(ctx, page, videoID)
		if !ok || text == "" {
			logger.WithField("method", m.Name).Debug("Extraction method found nothing")
			continue
		}
		logger.WithFields(logrus.Fields{
			"method": m.Name,
			"length": len(text),
		}).Info("Transcript extracted")
		return &Transcript{Text: text, VideoTitle: title, Method: m.Name}, nil
	}

	logger.Warn("No transcript available")
	return nil, errors.NotFound(op, nil, MsgNoTranscript)
}

// VideoTitle reads the watch page heading, falling back to UnknownTitle.
func VideoTitle(page PageAccessor) string {
	if el, ok := page.Query(titleSelector); ok {
		if title := strings.TrimSpace(el.Text()); title != "" {
			return title
		}
	}
	return UnknownTitle
}

// Service loads pages by URL and extracts their transcripts.
type Service struct {
	loader    PageLoader
	extractor *Extractor
	validator *validation.Validator
}

func NewService(loader PageLoader, extractor *Extractor, validator *validation.Validator) *Service {
	return &Service{loader: loader, extractor: extractor, validator: validator}
}

func (s *Service) GetTranscript(ctx context.Context, rawURL string) (*Transcript, error) {
	if err := s.validator.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	page, err := s.loader.Load(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, page)
}
