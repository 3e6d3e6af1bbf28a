package article

import (
	"regexp"
	"strings"

	"github.com/ppiankov/scribedesk/internal/model"
)

// Older drafting prompts asked for labelled blocks separated by blank lines:
//
//	Title: "..."
//
//	Lead Paragraph:
//	...
//
//	Subheading 1: ...
//	...
//
//	Notable Quotes:
//	1. "..."
//
//	Key Facts:
//	1. ...
//
// ParseLegacy is kept only as a fallback for responses in that shape.

var blockSeparator = regexp.MustCompile(`\n[ \t\r]*\n`)

var legacyLabels = []string{"Title:", "Lead Paragraph:", "Subheading", "Notable Quotes:", "Quotes:", "Key Facts"}

// ParseLegacy extracts an ArticleDraft from a labelled-block response
func ParseLegacy(text string) model.ArticleDraft {
	draft := model.NewArticleDraft()

	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return draft
	}

	draft.Title = stripQuoteMarks(strings.TrimSpace(strings.TrimPrefix(blocks[0], "Title:")))

	quotesFound, factsFound := false, false
	for i, block := range blocks[1:] {
		switch {
		case i == 0 && isLegacyLead(block):
			// Second block is the lead, labelled or not
			draft.LeadParagraph = strings.TrimSpace(strings.TrimPrefix(block, "Lead Paragraph:"))

		case strings.HasPrefix(block, "Subheading"):
			heading, body := legacySubheading(block)
			draft.Subheadings = append(draft.Subheadings, model.Subheading{
				ID:      model.SequenceID(len(draft.Subheadings) + 1),
				Heading: heading,
				Body:    body,
			})

		case !quotesFound && (strings.HasPrefix(block, "Notable Quotes:") || strings.HasPrefix(block, "Quotes:")):
			quotesFound = true
			for _, line := range blockItems(block) {
				if text := stripQuoteMarks(stripNumber(line)); text != "" {
					draft.Quotes = append(draft.Quotes, model.NewPullQuote(len(draft.Quotes)+1, text))
				}
			}

		case !factsFound && isLegacyFactsBlock(block):
			factsFound = true
			for _, line := range blockItems(block) {
				if text := stripNumber(line); text != "" {
					draft.Facts = append(draft.Facts, model.NewFactBox(len(draft.Facts)+1, text))
				}
			}
		}
	}

	return draft
}

// looksLegacy reports whether text uses the labelled-block framing
func looksLegacy(text string) bool {
	for _, line := range contentLines(text) {
		line = strings.TrimSpace(line)
		for _, label := range legacyLabels {
			if strings.HasPrefix(line, label) {
				return true
			}
		}
	}
	return false
}

func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, block := range blockSeparator.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// legacySubheading splits "Subheading 1: Heading\nbody..." into heading and body
func legacySubheading(block string) (string, string) {
	lines := strings.Split(block, "\n")

	heading := ""
	if idx := strings.Index(lines[0], ":"); idx >= 0 {
		heading = strings.TrimSpace(lines[0][idx+1:])
	}
	rest := lines[1:]
	if heading == "" && len(rest) > 0 {
		heading = strings.TrimSpace(rest[0])
		rest = rest[1:]
	}
	return heading, joinLines(rest)
}

func isLegacyLead(block string) bool {
	if strings.HasPrefix(block, "Lead Paragraph:") {
		return true
	}
	for _, label := range legacyLabels {
		if strings.HasPrefix(block, label) {
			return false
		}
	}
	return true
}

func isLegacyFactsBlock(block string) bool {
	return strings.HasPrefix(block, "Key Facts:") ||
		strings.HasPrefix(block, "Key Facts and Statistics:") ||
		strings.Contains(strings.ToLower(block), "key facts")
}

// blockItems returns the non-blank lines after the block's header line
func blockItems(block string) []string {
	lines := strings.Split(block, "\n")
	var items []string
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func stripNumber(line string) string {
	if text, ok := numberedText(line); ok {
		return text
	}
	return strings.TrimSpace(line)
}
