// Package article turns a drafting model's markdown response into a structured ArticleDraft.
//
// The response convention the drafting prompt asks for:
//
//	# Title
//	Lead paragraph text...
//	## Subheading
//	Body text...
//	### Notable Quotes
//	1. "Quote"
//	### Key Facts
//	1. Fact
//
// Parsing never fails: whatever cannot be located is left empty.
package article

import (
	"regexp"
	"strings"

	"github.com/ppiankov/scribedesk/internal/model"
)

// section is the parser's current position in the response
type section int

const (
	sectionNone       section = iota // Before the first "## ", lines feed the lead paragraph
	sectionSubheading                // Accumulating a subheading body
	sectionQuotes                    // Numbered lines become pull quotes
	sectionFacts                     // Numbered lines become fact boxes
	sectionSkip                      // Under an unrecognized "### " heading
)

const (
	titleMarker      = "# "
	subheadingMarker = "## "
	sectionMarker    = "### "
)

// numberedEntry matches "1. text", "12.text"
var numberedEntry = regexp.MustCompile(`^\d+\.\s*(.*)$`)

// Parse extracts an ArticleDraft from a markdown-convention response.
// It is pure and safe for concurrent use.
func Parse(text string) model.ArticleDraft {
	p := &parser{draft: model.NewArticleDraft()}
	for _, line := range contentLines(text) {
		p.consume(line)
	}
	return p.finish()
}

type parser struct {
	draft     model.ArticleDraft
	state     section
	exclusive bool // Set once quotes or facts open; "## " is ignored from then on

	lead    []string
	heading string
	body    []string
}

func (p *parser) consume(line string) {
	marker := strings.TrimSpace(line)

	switch {
	case hasMarker(marker, titleMarker) && p.draft.Title == "":
		p.draft.Title = markerText(marker, titleMarker)

	case hasMarker(marker, subheadingMarker):
		if p.exclusive {
			return
		}
		p.flushSubheading()
		p.state = sectionSubheading
		p.heading = markerText(marker, subheadingMarker)

	case hasMarker(marker, sectionMarker):
		p.flushSubheading()
		switch classifySection(markerText(marker, sectionMarker)) {
		case sectionQuotes:
			p.state = sectionQuotes
			p.exclusive = true
		case sectionFacts:
			p.state = sectionFacts
			p.exclusive = true
		default:
			p.state = sectionSkip
		}

	default:
		p.content(line, marker)
	}
}

// content routes a non-marker line to the open section
func (p *parser) content(line, trimmed string) {
	switch p.state {
	case sectionNone:
		p.lead = append(p.lead, line)
	case sectionSubheading:
		p.body = append(p.body, line)
	case sectionQuotes:
		if text, ok := numberedText(trimmed); ok {
			text = stripQuoteMarks(text)
			if text != "" {
				p.draft.Quotes = append(p.draft.Quotes, model.NewPullQuote(len(p.draft.Quotes)+1, text))
			}
		}
	case sectionFacts:
		if text, ok := numberedText(trimmed); ok && text != "" {
			p.draft.Facts = append(p.draft.Facts, model.NewFactBox(len(p.draft.Facts)+1, text))
		}
	}
}

// flushSubheading emits the open subheading, if any
func (p *parser) flushSubheading() {
	if p.state != sectionSubheading {
		return
	}
	p.draft.Subheadings = append(p.draft.Subheadings, model.Subheading{
		ID:      model.SequenceID(len(p.draft.Subheadings) + 1),
		Heading: p.heading,
		Body:    joinLines(p.body),
	})
	p.heading = ""
	p.body = nil
	p.state = sectionNone
}

func (p *parser) finish() model.ArticleDraft {
	p.flushSubheading()
	p.draft.LeadParagraph = joinLines(p.lead)
	return p.draft
}

// hasMarker reports whether a trimmed line starts with marker. A bare marker
// ("##" once trailing space is gone) still counts, with empty text.
func hasMarker(trimmed, marker string) bool {
	return strings.HasPrefix(trimmed, marker) || trimmed == strings.TrimSpace(marker)
}

func markerText(trimmed, marker string) string {
	if len(trimmed) < len(marker) {
		return ""
	}
	return strings.TrimSpace(trimmed[len(marker):])
}

// classifySection maps a "### " heading to the section it opens
func classifySection(heading string) section {
	h := strings.ToLower(strings.TrimSpace(heading))
	switch {
	case strings.HasPrefix(h, "notable quotes"), strings.HasPrefix(h, "quotes"):
		return sectionQuotes
	case strings.HasPrefix(h, "key facts"), strings.HasPrefix(h, "facts"):
		return sectionFacts
	default:
		return sectionSkip
	}
}

// contentLines splits text into lines, dropping blank ones and trailing whitespace
func contentLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// numberedText returns the text after a leading "N." marker
func numberedText(line string) (string, bool) {
	m := numberedEntry.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// stripQuoteMarks removes one pair of wrapping straight double quotes
func stripQuoteMarks(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}

func joinLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
