package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/nijaru/summora/utils"
	"github.com/sirupsen/logrus"
)

const (
	panelSelector          = `ytd-engagement-panel-section-list-renderer[target-id="engagement-panel-transcript"]`
	expandedPanelSelector  = `#panels ytd-engagement-panel-section-list-renderer[visibility="ENGAGEMENT_PANEL_VISIBILITY_EXPANDED"]`
	panelExpanded          = "ENGAGEMENT_PANEL_VISIBILITY_EXPANDED"
	showTranscriptSelector = `button[aria-label*="Show transcript"]`
	descriptionButtons     = `#description-inline-expander button, ytd-structured-description-content-renderer button`
	segmentTextSelector    = `yt-formatted-string.segment-text`
	segmentRendererSel     = `ytd-transcript-segment-renderer`
	closeButtonSelector    = `button[aria-label*="Close"]`

	DefaultSettleDelay = 1500 * time.Millisecond
)

// buttonStrategy finds the control that opens the transcript panel.
type buttonStrategy struct {
	name string
	find func(page PageAccessor) (Element, bool)
}

var transcriptButtonStrategies = []buttonStrategy{
	{name: "any-button", find: func(page PageAccessor) (Element, bool) {
		for _, b := range page.QueryAll("button") {
			label, _ := b.Attr("aria-label")
			if mentionsTranscript(b.Text()) || mentionsTranscript(label) {
				return b, true
			}
		}
		return nil, false
	}},
	{name: "aria-label", find: func(page PageAccessor) (Element, bool) {
		return page.Query(showTranscriptSelector)
	}},
	{name: "description", find: func(page PageAccessor) (Element, bool) {
		for _, b := range page.QueryAll(descriptionButtons) {
			if mentionsTranscript(b.Text()) {
				return b, true
			}
		}
		return nil, false
	}},
}

func mentionsTranscript(s string) bool {
	return strings.Contains(strings.ToLower(s), "transcript")
}

// PanelScraper reads the transcript from the on-page transcript panel,
// opening it first when needed. It changes visible page state: the panel
// is opened and then closed again.
type PanelScraper struct {
	settleDelay time.Duration
	logger      *logrus.Logger
}

func NewPanelScraper(settleDelay time.Duration, logger *logrus.Logger) *PanelScraper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PanelScraper{settleDelay: settleDelay, logger: logger}
}

func (s *PanelScraper) Scrape(ctx context.Context, page PageAccessor) (string, bool) {
	const op = "PanelScraper.Scrape"
	logger := s.logger.WithContext(ctx).WithField("op", op)

	panel, ok := page.Query(panelSelector)
	if ok {
		if v, _ := panel.Attr("visibility"); v != panelExpanded {
			ok = false
		}
	}

	if !ok {
		button, strategy, found := findTranscriptButton(page)
		if !found {
			logger.Debug("Transcript button not found")
			return "", false
		}
		logger = logger.WithField("button_strategy", strategy)

		if err := page.Click(ctx, button); err != nil {
			logger.WithError(err).Debug("Could not open transcript panel")
			return "", false
		}
		if err := page.Sleep(ctx, s.settleDelay); err != nil {
			return "", false
		}

		panel, ok = page.Query(panelSelector)
		if !ok {
			panel, ok = page.Query(expandedPanelSelector)
		}
		if !ok {
			logger.Debug("Transcript panel not found after opening")
			return "", false
		}
	}

	segments := panel.QueryAll(segmentTextSelector)
	if len(segments) == 0 {
		segments = panel.QueryAll(segmentRendererSel)
	}
	if len(segments) == 0 {
		logger.Debug("Transcript panel has no segments")
		return "", false
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, strings.TrimSpace(seg.Text()))
	}
	transcript := utils.CollapseWhitespace(strings.Join(texts, " "))

	if closeButton, ok := panel.Query(closeButtonSelector); ok {
		if err := page.Click(ctx, closeButton); err != nil {
			logger.WithError(err).Debug("Could not close transcript panel")
		}
	}

	if transcript == "" {
		return "", false
	}
	logger.WithFields(logrus.Fields{
		"segments": len(segments),
		"length":   len(transcript),
	}).Info("Transcript extracted from panel")
	return transcript, true
}

func findTranscriptButton(page PageAccessor) (Element, string, bool) {
	for _, s := range transcriptButtonStrategies {
		if el, ok := s.find(page); ok {
			return el, s.name, true
		}
	}
	return nil, "", false
}
