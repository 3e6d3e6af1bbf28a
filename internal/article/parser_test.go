package article

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/scribedesk/internal/model"
)

const canonicalResponse = `# The Future of AI in Journalism
As artificial intelligence continues to reshape industries...

## The Evolution of News Gathering
Traditional reporting methods are being augmented by AI tools.

### Notable Quotes
1. "The future of journalism is increasingly digital"

### Key Facts
1. 87% of journalists believe AI will play a role
`

func TestParse_CanonicalResponse(t *testing.T) {
	draft := Parse(canonicalResponse)

	if draft.Title != "The Future of AI in Journalism" {
		t.Errorf("Expected title 'The Future of AI in Journalism', got '%s'", draft.Title)
	}
	if !strings.HasPrefix(draft.LeadParagraph, "As artificial intelligence") {
		t.Errorf("Unexpected lead paragraph: %q", draft.LeadParagraph)
	}

	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected 1 subheading, got %d", len(draft.Subheadings))
	}
	sub := draft.Subheadings[0]
	if sub.ID != "1" || sub.Heading != "The Evolution of News Gathering" {
		t.Errorf("Unexpected subheading: %+v", sub)
	}
	if sub.Body != "Traditional reporting methods are being augmented by AI tools." {
		t.Errorf("Unexpected subheading body: %q", sub.Body)
	}

	if len(draft.Quotes) != 1 {
		t.Fatalf("Expected 1 quote, got %d", len(draft.Quotes))
	}
	want := model.PullQuote{
		ID:        "1",
		Text:      "The future of journalism is increasingly digital",
		Speaker:   "Interviewee",
		Timestamp: "00:00",
	}
	if draft.Quotes[0] != want {
		t.Errorf("Expected quote %+v, got %+v", want, draft.Quotes[0])
	}

	if len(draft.Facts) != 1 {
		t.Fatalf("Expected 1 fact, got %d", len(draft.Facts))
	}
	wantFact := model.FactBox{
		ID:      "1",
		Title:   "Key Fact 1",
		Content: "87% of journalists believe AI will play a role",
		Source:  "Interview Transcript",
	}
	if draft.Facts[0] != wantFact {
		t.Errorf("Expected fact %+v, got %+v", wantFact, draft.Facts[0])
	}
}

func TestParse_TwoSubheadingsNoQuotesOrFacts(t *testing.T) {
	input := `# Title
Lead.

## First
Body one.

## Second
Body two.
`
	draft := Parse(input)

	if len(draft.Subheadings) != 2 {
		t.Fatalf("Expected 2 subheadings, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Heading != "First" || draft.Subheadings[1].Heading != "Second" {
		t.Errorf("Subheadings out of order: %+v", draft.Subheadings)
	}
	if draft.Quotes == nil || len(draft.Quotes) != 0 {
		t.Errorf("Expected empty non-nil quotes, got %#v", draft.Quotes)
	}
	if draft.Facts == nil || len(draft.Facts) != 0 {
		t.Errorf("Expected empty non-nil facts, got %#v", draft.Facts)
	}
}

func TestParse_UnnumberedLinesIgnoredInLists(t *testing.T) {
	input := `# Title
### Notable Quotes
1. "First"
- an unnumbered line
2. "Second"
### Key Facts
* bullet fact
1. Numbered fact
`
	draft := Parse(input)

	if len(draft.Quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d: %+v", len(draft.Quotes), draft.Quotes)
	}
	if draft.Quotes[0].Text != "First" || draft.Quotes[1].Text != "Second" {
		t.Errorf("Unexpected quotes: %+v", draft.Quotes)
	}
	if len(draft.Facts) != 1 || draft.Facts[0].Content != "Numbered fact" {
		t.Errorf("Unexpected facts: %+v", draft.Facts)
	}
}

func TestParse_TrailingSubheadingFlushed(t *testing.T) {
	input := "# Title\nLead\n## Only Section\nLast line of the article."
	draft := Parse(input)

	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected trailing subheading to be flushed, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Body != "Last line of the article." {
		t.Errorf("Unexpected body: %q", draft.Subheadings[0].Body)
	}
}

func TestParse_TrailingSubheadingWithoutBody(t *testing.T) {
	draft := Parse("# Title\n## Dangling")

	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected 1 subheading, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Heading != "Dangling" || draft.Subheadings[0].Body != "" {
		t.Errorf("Unexpected subheading: %+v", draft.Subheadings[0])
	}
}

func TestParse_EmptySubheadingMarker(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing space kept", "# T\nlead\n## \nbody text"},
		{"trailing space stripped", "# T\nlead\n##\nbody text"},
		{"CRLF", "# T\r\nlead\r\n## \r\nbody text\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := Parse(tt.input)

			if draft.LeadParagraph != "lead" {
				t.Errorf("Expected lead 'lead', got %q", draft.LeadParagraph)
			}
			if len(draft.Subheadings) != 1 {
				t.Fatalf("Expected 1 subheading, got %d", len(draft.Subheadings))
			}
			if draft.Subheadings[0].Heading != "" || draft.Subheadings[0].Body != "body text" {
				t.Errorf("Unexpected subheading: %+v", draft.Subheadings[0])
			}
		})
	}
}

func TestParse_EmptyTitleMarker(t *testing.T) {
	draft := Parse("# \nlead\n# Real Title\n## Section\nBody")

	if draft.Title != "Real Title" {
		t.Errorf("Expected empty title line to leave the title open, got %q", draft.Title)
	}
	if draft.LeadParagraph != "lead" {
		t.Errorf("Expected bare title marker kept out of the lead, got %q", draft.LeadParagraph)
	}
}

func TestParse_LateTitleLine(t *testing.T) {
	input := `Opening words.
## Section
Body.
### Notable Quotes
1. "A quote"
# Late Title
2. "Another quote"
`
	draft := Parse(input)

	if draft.Title != "Late Title" {
		t.Errorf("Expected the first title line to win wherever it appears, got %q", draft.Title)
	}
	if draft.LeadParagraph != "Opening words." {
		t.Errorf("Unexpected lead: %q", draft.LeadParagraph)
	}
	if len(draft.Quotes) != 2 {
		t.Errorf("Expected quotes section to continue after the title line, got %d quotes", len(draft.Quotes))
	}
	if draft.Subheadings[0].Body != "Body." {
		t.Errorf("Unexpected body: %q", draft.Subheadings[0].Body)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		draft := Parse(input)

		if draft.Title != "" || draft.LeadParagraph != "" {
			t.Errorf("Expected empty strings for %q, got %+v", input, draft)
		}
		if draft.Subheadings == nil || draft.Quotes == nil || draft.Facts == nil {
			t.Errorf("Expected non-nil lists for %q, got %#v", input, draft)
		}
		if !draft.IsEmpty() {
			t.Errorf("Expected empty draft for %q", input)
		}
	}
}

func TestParse_SectionExclusivity(t *testing.T) {
	input := `# Title
## Before
Body.
### Quotes
1. "Quoted"
## After Quotes
Should not become a subheading.
2. "Still a quote"
`
	draft := Parse(input)

	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected 1 subheading, got %d: %+v", len(draft.Subheadings), draft.Subheadings)
	}
	if draft.Subheadings[0].Heading != "Before" {
		t.Errorf("Unexpected subheading: %+v", draft.Subheadings[0])
	}
	if len(draft.Quotes) != 2 {
		t.Errorf("Expected 2 quotes, got %d", len(draft.Quotes))
	}
}

func TestParse_QuotesSectionTerminatesSubheading(t *testing.T) {
	input := `## Section
Body line one.
Body line two.
### Notable Quotes
1. "Quote"
`
	draft := Parse(input)

	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected 1 subheading, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Body != "Body line one.\nBody line two." {
		t.Errorf("Expected body lines joined with newline, got %q", draft.Subheadings[0].Body)
	}
}

func TestParse_DenseSequentialIDs(t *testing.T) {
	input := `# T
## A
a
## B
b
## C
c
### Notable Quotes
1. "q1"
2. "q2"
3. "q3"
### Key Facts
1. f1
2. f2
`
	draft := Parse(input)

	for i, sub := range draft.Subheadings {
		if sub.ID != model.SequenceID(i+1) {
			t.Errorf("Subheading %d has id %s", i, sub.ID)
		}
	}
	for i, q := range draft.Quotes {
		if q.ID != model.SequenceID(i+1) || q.Text != "q"+model.SequenceID(i+1) {
			t.Errorf("Quote %d: %+v", i, q)
		}
	}
	for i, f := range draft.Facts {
		if f.ID != model.SequenceID(i+1) || f.Title != "Key Fact "+model.SequenceID(i+1) {
			t.Errorf("Fact %d: %+v", i, f)
		}
	}
	if len(draft.Subheadings) != 3 || len(draft.Quotes) != 3 || len(draft.Facts) != 2 {
		t.Errorf("Unexpected counts: %d subheadings, %d quotes, %d facts",
			len(draft.Subheadings), len(draft.Quotes), len(draft.Facts))
	}
}

func TestParse_LeadWithoutBlankLine(t *testing.T) {
	input := "# Title\nFirst lead line.\nSecond lead line.\n## Section\nBody"
	draft := Parse(input)

	if draft.LeadParagraph != "First lead line.\nSecond lead line." {
		t.Errorf("Unexpected lead: %q", draft.LeadParagraph)
	}
}

func TestParse_MissingTitle(t *testing.T) {
	draft := Parse("Just an opening paragraph.\n## Section\nBody")

	if draft.Title != "" {
		t.Errorf("Expected empty title, got %q", draft.Title)
	}
	if draft.LeadParagraph != "Just an opening paragraph." {
		t.Errorf("Unexpected lead: %q", draft.LeadParagraph)
	}
	if len(draft.Subheadings) != 1 {
		t.Errorf("Expected 1 subheading, got %d", len(draft.Subheadings))
	}
}

func TestParse_FirstTitleWins(t *testing.T) {
	draft := Parse("# First\n## Section\n# Second\nBody")

	if draft.Title != "First" {
		t.Errorf("Expected title 'First', got %q", draft.Title)
	}
	if draft.Subheadings[0].Body != "# Second\nBody" {
		t.Errorf("Expected later title line kept as body text, got %q", draft.Subheadings[0].Body)
	}
}

func TestParse_UnknownThirdLevelHeading(t *testing.T) {
	input := `# Title
## Section
Body.
### Background
Skipped text.
## Next Section
Next body.
`
	draft := Parse(input)

	if len(draft.Subheadings) != 2 {
		t.Fatalf("Expected 2 subheadings, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Body != "Body." {
		t.Errorf("Expected unknown heading to close the section, got %q", draft.Subheadings[0].Body)
	}
	if draft.Subheadings[1].Heading != "Next Section" {
		t.Errorf("Unexpected second subheading: %+v", draft.Subheadings[1])
	}
}

func TestParse_HeadingVariants(t *testing.T) {
	tests := []struct {
		name    string
		heading string
		quotes  int
		facts   int
	}{
		{"notable quotes", "### Notable Quotes", 1, 0},
		{"quotes", "### Quotes", 1, 0},
		{"quotes with colon", "### Notable Quotes:", 1, 0},
		{"key facts", "### Key Facts", 0, 1},
		{"facts", "### Facts", 0, 1},
		{"key facts and statistics", "### Key Facts and Statistics", 0, 1},
		{"lower case", "### key facts", 0, 1},
		{"unrelated", "### Conclusion", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := Parse("# T\n" + tt.heading + "\n1. entry\n")
			if len(draft.Quotes) != tt.quotes || len(draft.Facts) != tt.facts {
				t.Errorf("Expected %d quotes and %d facts, got %d and %d",
					tt.quotes, tt.facts, len(draft.Quotes), len(draft.Facts))
			}
		})
	}
}

func TestParse_QuoteMarks(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`1. "Wrapped"`, "Wrapped"},
		{`1. Unwrapped`, "Unwrapped"},
		{`1.  "  Padded  "  `, "Padded"},
		{`12."Tight"`, "Tight"},
		{`1. "Only leading`, "Only leading"},
		{`1. Says "hi" to me`, `Says "hi" to me`},
	}

	for _, tt := range tests {
		draft := Parse("### Quotes\n" + tt.line)
		if len(draft.Quotes) != 1 {
			t.Errorf("%q: expected 1 quote, got %d", tt.line, len(draft.Quotes))
			continue
		}
		if draft.Quotes[0].Text != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.line, tt.want, draft.Quotes[0].Text)
		}
	}
}

func TestParse_EmptyNumberedEntriesDropped(t *testing.T) {
	draft := Parse("### Quotes\n1.\n2. \"\"\n3. \"Real\"\n### Facts\n1.\n2. Real fact")

	if len(draft.Quotes) != 1 || draft.Quotes[0].ID != "1" {
		t.Errorf("Expected single quote with id 1, got %+v", draft.Quotes)
	}
	if len(draft.Facts) != 1 || draft.Facts[0].Title != "Key Fact 1" {
		t.Errorf("Expected single fact labelled 'Key Fact 1', got %+v", draft.Facts)
	}
}

func TestParse_CRLFAndIndentation(t *testing.T) {
	input := "# Title\r\n\r\nLead\r\n  ## Section  \r\nBody\r\n   - nested item\r\n"
	draft := Parse(input)

	if draft.Title != "Title" || draft.LeadParagraph != "Lead" {
		t.Errorf("Unexpected title/lead: %q / %q", draft.Title, draft.LeadParagraph)
	}
	if len(draft.Subheadings) != 1 {
		t.Fatalf("Expected 1 subheading, got %d", len(draft.Subheadings))
	}
	if draft.Subheadings[0].Body != "Body\n   - nested item" {
		t.Errorf("Unexpected body: %q", draft.Subheadings[0].Body)
	}
}

func TestParse_FactsThenQuotes(t *testing.T) {
	draft := Parse("### Key Facts\n1. f\n### Notable Quotes\n1. \"q\"\n## Late\nbody")

	if len(draft.Facts) != 1 || len(draft.Quotes) != 1 {
		t.Errorf("Expected 1 fact and 1 quote, got %d and %d", len(draft.Facts), len(draft.Quotes))
	}
	if len(draft.Subheadings) != 0 {
		t.Errorf("Expected no subheadings after list sections, got %+v", draft.Subheadings)
	}
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(canonicalResponse)
	second := Parse(canonicalResponse)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output, got %+v and %+v", first, second)
	}
}

func TestParse_Concurrent(t *testing.T) {
	want := Parse(canonicalResponse)

	var wg sync.WaitGroup
	errs := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Parse(canonicalResponse); !reflect.DeepEqual(got, want) {
				errs <- "concurrent parse diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
