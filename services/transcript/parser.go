package transcript

import (
	"encoding/json"
	"encoding/xml"
	"html"
	"io"
	"strings"

	"github.com/nijaru/summora/utils"
)

type json3Segment struct {
	UTF8 string `json:"utf8"`
}

type json3Event struct {
	Segs *[]json3Segment `json:"segs"`
}

type json3Document struct {
	Events *[]json3Event `json:"events"`
}

type json3Item struct {
	Text string `json:"text"`
	UTF8 string `json:"utf8"`
}

// ParseCaptionData turns a caption track body into plain text. JSON is
// tried first when the body looks like JSON; anything that yields no text
// falls through to the XML timedtext format.
func ParseCaptionData(data string) (string, bool) {
	trimmed := strings.TrimSpace(data)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if text, ok := parseJSONCaptions(trimmed); ok {
			return text, true
		}
	}
	return parseXMLCaptions(data)
}

func parseJSONCaptions(data string) (string, bool) {
	var parts []string

	if strings.HasPrefix(data, "[") {
		var items []json3Item
		if err := json.Unmarshal([]byte(data), &items); err != nil {
			return "", false
		}
		for _, item := range items {
			if item.Text != "" {
				parts = append(parts, item.Text)
			} else {
				parts = append(parts, item.UTF8)
			}
		}
	} else {
		var doc json3Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil || doc.Events == nil {
			return "", false
		}
		for _, event := range *doc.Events {
			if event.Segs == nil {
				continue
			}
			var sb strings.Builder
			for _, seg := range *event.Segs {
				sb.WriteString(seg.UTF8)
			}
			parts = append(parts, sb.String())
		}
	}

	text := utils.CollapseWhitespace(strings.Join(parts, " "))
	return text, text != ""
}

// parseXMLCaptions collects the text content of every <text> element.
// HTML entities are accepted, and a second unescape pass handles bodies
// that were escaped twice.
func parseXMLCaptions(data string) (string, bool) {
	dec := xml.NewDecoder(strings.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		parts   []string
		current strings.Builder
		depth   int
		found   int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
			} else if t.Name.Local == "text" {
				depth = 1
				current.Reset()
			}
		case xml.EndElement:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				found++
				parts = append(parts, html.UnescapeString(current.String()))
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}

	if found == 0 {
		return "", false
	}
	text := utils.CollapseWhitespace(strings.Join(parts, " "))
	return text, text != ""
}
