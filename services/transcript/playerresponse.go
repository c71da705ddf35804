package transcript

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nijaru/summora/models"
)

const playerResponseMarker = "ytInitialPlayerResponse"

var (
	varTerminatedRe    = regexp.MustCompile(`(?s)var ytInitialPlayerResponse\s*=\s*(\{.+?\});var`)
	varOrScriptCloseRe = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*(\{[\s\S]+?\});(?:var|</script>)`)
)

// jsonStrategy pulls a candidate JSON object out of a script body.
type jsonStrategy struct {
	name    string
	extract func(script string) (string, bool)
}

// playerResponseStrategies are tried in order; the first candidate that
// parses as JSON wins.
var playerResponseStrategies = []jsonStrategy{
	{name: "var-terminated", extract: regexCandidate(varTerminatedRe)},
	{name: "var-or-script-close", extract: regexCandidate(varOrScriptCloseRe)},
	{name: "brace-scan", extract: braceScan},
}

func regexCandidate(re *regexp.Regexp) func(string) (string, bool) {
	return func(script string) (string, bool) {
		m := re.FindStringSubmatch(script)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

// braceScan returns the balanced object starting at the first '{' after the
// marker. Braces inside JSON string literals are ignored.
func braceScan(script string) (string, bool) {
	idx := strings.Index(script, playerResponseMarker)
	if idx < 0 {
		return "", false
	}
	start := strings.IndexByte(script[idx:], '{')
	if start < 0 {
		return "", false
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(script); i++ {
		c := script[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return script[start : i+1], true
			}
		}
	}
	return "", false
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer *struct {
			CaptionTracks []models.CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

func (p *playerResponse) captionTracks() []models.CaptionTrack {
	if p == nil || p.Captions == nil || p.Captions.PlayerCaptionsTracklistRenderer == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// extractPlayerResponse applies the strategies to one script and returns the
// first candidate that decodes, with the name of the strategy that found it.
func extractPlayerResponse(script string) (*playerResponse, string, bool) {
	for _, s := range playerResponseStrategies {
		candidate, ok := s.extract(script)
		if !ok {
			continue
		}
		var pr playerResponse
		if err := json.Unmarshal([]byte(candidate), &pr); err != nil {
			continue
		}
		return &pr, s.name, true
	}
	return nil, "", false
}

// findPlayerResponse scans scripts in order for a decodable player response.
func findPlayerResponse(scripts []string) (*playerResponse, string, bool) {
	for _, script := range scripts {
		if !strings.Contains(script, playerResponseMarker) {
			continue
		}
		if pr, strategy, ok := extractPlayerResponse(script); ok {
			return pr, strategy, true
		}
	}
	return nil, "", false
}
