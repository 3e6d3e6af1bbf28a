package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ppiankov/scribedesk/internal/model"
)

// Renderer writes drafts as JSON, Markdown or HTML
type Renderer struct {
	includeFooter bool
	md            goldmark.Markdown
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		md:            goldmark.New(goldmark.WithExtensions(extension.Typographer)),
	}
}

// MarkdownArticle renders a draft in the same layout the drafting prompt asks for,
// so article.Parse(MarkdownArticle(d)) yields d again.
func (r *Renderer) MarkdownArticle(d model.ArticleDraft) string {
	var b strings.Builder

	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n", oneLine(d.Title))
	}
	if d.LeadParagraph != "" {
		b.WriteString(d.LeadParagraph)
		b.WriteString("\n")
	}

	for _, sub := range d.Subheadings {
		if sub.Heading == "" && sub.Body == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", oneLine(sub.Heading))
		if sub.Body != "" {
			b.WriteString(sub.Body)
			b.WriteString("\n")
		}
	}

	if len(d.Quotes) > 0 {
		b.WriteString("\n### Notable Quotes\n")
		for i, q := range d.Quotes {
			fmt.Fprintf(&b, "%d. \"%s\"\n", i+1, oneLine(q.Text))
		}
	}

	if len(d.Facts) > 0 {
		b.WriteString("\n### Key Facts\n")
		for i, f := range d.Facts {
			fmt.Fprintf(&b, "%d. %s\n", i+1, oneLine(f.Content))
		}
	}

	return b.String()
}

// presentationMarkdown is the reader-facing layout: quotes as block quotes with
// attribution, facts with their titles and sources
func (r *Renderer) presentationMarkdown(d model.ArticleDraft) string {
	var b strings.Builder

	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", oneLine(d.Title))
	}
	if d.LeadParagraph != "" {
		fmt.Fprintf(&b, "**%s**\n\n", strings.TrimSpace(d.LeadParagraph))
	}

	for _, sub := range d.Subheadings {
		if sub.Heading == "" && sub.Body == "" {
			continue
		}
		if sub.Heading != "" {
			fmt.Fprintf(&b, "## %s\n\n", oneLine(sub.Heading))
		}
		if sub.Body != "" {
			fmt.Fprintf(&b, "%s\n\n", sub.Body)
		}
	}

	if len(d.Quotes) > 0 {
		b.WriteString("## Notable Quotes\n\n")
		for _, q := range d.Quotes {
			fmt.Fprintf(&b, "> \"%s\"\n>\n> *%s", oneLine(q.Text), q.Speaker)
			if q.Timestamp != "" {
				fmt.Fprintf(&b, ", %s", q.Timestamp)
			}
			b.WriteString("*\n\n")
		}
	}

	if len(d.Facts) > 0 {
		b.WriteString("## Key Facts\n\n")
		for _, f := range d.Facts {
			fmt.Fprintf(&b, "- **%s:** %s", f.Title, oneLine(f.Content))
			if f.Source != "" {
				fmt.Fprintf(&b, " _(%s)_", f.Source)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTMLArticle renders a standalone HTML page. Raw HTML in model output is not passed through.
func (r *Renderer) HTMLArticle(d model.ArticleDraft, footer string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(r.presentationMarkdown(d)), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	title := d.Title
	if title == "" {
		title = "Untitled draft"
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(oneLine(title)))
	page.WriteString("</head>\n<body>\n<article>\n")
	page.Write(body.Bytes())
	page.WriteString("</article>\n")
	if footer != "" {
		fmt.Fprintf(&page, "<footer>%s</footer>\n", html.EscapeString(footer))
	}
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// Footer describes where a draft came from, or "" when footers are disabled
func (r *Renderer) Footer(result *model.DraftResult) string {
	if !r.includeFooter || result == nil {
		return ""
	}
	parts := []string{"Drafted by scribedesk"}
	if result.Source != "" {
		parts = append(parts, "from "+result.Source)
	}
	if result.Drafter.Provider != "" {
		who := result.Drafter.Provider
		if result.Drafter.Model != "" {
			who += "/" + result.Drafter.Model
		}
		parts = append(parts, "using "+who)
	}
	return strings.Join(parts, " ") + ". Review quotes against the recording before publishing."
}

// RenderJSON writes the full result, transcript and raw response included
func (r *Renderer) RenderJSON(result *model.DraftResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the article in the drafting layout, plus an optional footer
func (r *Renderer) RenderMarkdown(result *model.DraftResult, path string) error {
	content := r.MarkdownArticle(result.Article)
	if footer := r.Footer(result); footer != "" {
		// Facts and quotes ignore unnumbered lines, so the footer never parses back as content
		content += "\n---\n_" + footer + "_\n"
	}
	return writeFile(path, []byte(content))
}

// RenderHTML writes a standalone HTML page
func (r *Renderer) RenderHTML(result *model.DraftResult, path string) error {
	page, err := r.HTMLArticle(result.Article, r.Footer(result))
	if err != nil {
		return err
	}
	return writeFile(path, []byte(page))
}

// RenderSummary prints a short overview of the result
func (r *Renderer) RenderSummary(w io.Writer, result *model.DraftResult) {
	d := result.Article

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "  %s\n", oneLine(title))
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "Source:       %s\n", result.Source)
	if result.Transcript.Text != "" {
		fmt.Fprintf(w, "Transcript:   %d words", len(strings.Fields(result.Transcript.Text)))
		if result.Transcript.Language != "" {
			fmt.Fprintf(w, " (%s)", result.Transcript.Language)
		}
		fmt.Fprintln(w)
	}
	if result.Drafter.Provider != "" {
		cached := ""
		if result.Drafter.Cached {
			cached = " [cached]"
		}
		fmt.Fprintf(w, "Drafted by:   %s/%s%s\n", result.Drafter.Provider, result.Drafter.Model, cached)
	}
	fmt.Fprintf(w, "Format:       %s\n", result.Format)
	fmt.Fprintf(w, "Subheadings:  %d\n", len(d.Subheadings))
	fmt.Fprintf(w, "Pull quotes:  %d\n", len(d.Quotes))
	fmt.Fprintf(w, "Fact boxes:   %d\n", len(d.Facts))

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", warning)
		}
	}
	fmt.Fprintln(w)
}

// oneLine collapses newlines so a value cannot open a new markdown section
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
