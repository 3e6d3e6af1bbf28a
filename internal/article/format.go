package article

import (
	"strings"

	"github.com/ppiankov/scribedesk/internal/model"
)

// DetectFormat reports which response convention text follows.
// Markdown headings take precedence over legacy labels.
func DetectFormat(text string) model.ResponseFormat {
	for _, line := range contentLines(text) {
		line = strings.TrimSpace(line)
		if hasMarker(line, titleMarker) ||
			hasMarker(line, subheadingMarker) ||
			hasMarker(line, sectionMarker) {
			return model.FormatMarkdown
		}
	}
	if looksLegacy(text) {
		return model.FormatLegacy
	}
	return model.FormatUnknown
}

// ParseResponse parses text with the parser matching its format.
// Unknown formats go through the markdown parser, which degrades to a lead-only draft.
func ParseResponse(text string) (model.ArticleDraft, model.ResponseFormat) {
	format := DetectFormat(text)
	if format == model.FormatLegacy {
		return ParseLegacy(text), format
	}
	return Parse(text), format
}
