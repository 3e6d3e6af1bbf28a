package model

import "fmt"

// Placeholder attribution for entries the drafting model cannot attribute
const (
	PlaceholderSpeaker   = "Interviewee"
	PlaceholderTimestamp = "00:00"
	PlaceholderSource    = "Interview Transcript"
)

// ArticleDraft is the structured article parsed from one drafting response
type ArticleDraft struct {
	Title         string       `json:"title"`
	LeadParagraph string       `json:"leadParagraph"`
	Subheadings   []Subheading `json:"subheadings"`
	Quotes        []PullQuote  `json:"quotes"`
	Facts         []FactBox    `json:"facts"`
}

// Subheading is a heading plus its body text within the article body
type Subheading struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// PullQuote is a short quotation lifted from the interview
type PullQuote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
}

// FactBox is a short factual statement shown in the facts sidebar
type FactBox struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// NewArticleDraft returns an empty draft whose lists are non-nil
func NewArticleDraft() ArticleDraft {
	return ArticleDraft{
		Subheadings: []Subheading{},
		Quotes:      []PullQuote{},
		Facts:       []FactBox{},
	}
}

// NewPullQuote builds the quote at 1-based position n
func NewPullQuote(n int, text string) PullQuote {
	return PullQuote{
		ID:        SequenceID(n),
		Text:      text,
		Speaker:   PlaceholderSpeaker,
		Timestamp: PlaceholderTimestamp,
	}
}

// NewFactBox builds the fact at 1-based position n
func NewFactBox(n int, content string) FactBox {
	return FactBox{
		ID:      SequenceID(n),
		Title:   fmt.Sprintf("Key Fact %d", n),
		Content: content,
		Source:  PlaceholderSource,
	}
}

// SequenceID formats a 1-based position as a record id
func SequenceID(n int) string {
	return fmt.Sprintf("%d", n)
}

// IsEmpty reports whether nothing at all was extracted
func (d ArticleDraft) IsEmpty() bool {
	return d.Title == "" && d.LeadParagraph == "" &&
		len(d.Subheadings) == 0 && len(d.Quotes) == 0 && len(d.Facts) == 0
}

// Clone returns a deep copy with non-nil lists
func (d ArticleDraft) Clone() ArticleDraft {
	out := ArticleDraft{
		Title:         d.Title,
		LeadParagraph: d.LeadParagraph,
		Subheadings:   make([]Subheading, len(d.Subheadings)),
		Quotes:        make([]PullQuote, len(d.Quotes)),
		Facts:         make([]FactBox, len(d.Facts)),
	}
	copy(out.Subheadings, d.Subheadings)
	copy(out.Quotes, d.Quotes)
	copy(out.Facts, d.Facts)
	return out
}
