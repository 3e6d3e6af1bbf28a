package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/ppiankov/scribedesk/internal/article"
)

const sampleResponse = `# Title
Lead
## One
Body one
## Two
Body two
### Notable Quotes
1. "First quote"
2. "Second quote"
### Key Facts
1. First fact
2. Second fact
3. Third fact
`

func strPtr(s string) *string { return &s }

func newLoadedStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.ReplaceArticle(article.Parse(sampleResponse))
	return s
}

func TestStore_EmptySnapshot(t *testing.T) {
	st := New().Snapshot()

	if st.Article != nil {
		t.Errorf("Expected nil article before first draft, got %+v", st.Article)
	}
	if st.Quotes == nil || st.Facts == nil {
		t.Error("Expected non-nil quote and fact lists")
	}
	if _, ok := New().Draft(); ok {
		t.Error("Expected Draft to report no article")
	}
}

func TestStore_ReplaceArticle(t *testing.T) {
	s := newLoadedStore(t)
	st := s.Snapshot()

	if st.Article == nil || st.Article.Title != "Title" {
		t.Fatalf("Unexpected article: %+v", st.Article)
	}
	if len(st.Article.Subheadings) != 2 {
		t.Errorf("Expected 2 subheadings, got %d", len(st.Article.Subheadings))
	}
	if len(st.Quotes) != 2 || len(st.Facts) != 3 {
		t.Errorf("Expected 2 quotes and 3 facts, got %d and %d", len(st.Quotes), len(st.Facts))
	}

	s.ReplaceArticle(article.Parse("# Replacement"))
	st = s.Snapshot()
	if st.Article.Title != "Replacement" || len(st.Quotes) != 0 || len(st.Facts) != 0 {
		t.Errorf("Expected replacement to clear quotes and facts, got %+v", st)
	}
}

func TestStore_ReplaceArticleCopiesInput(t *testing.T) {
	draft := article.Parse(sampleResponse)
	s := New()
	s.ReplaceArticle(draft)

	draft.Quotes[0].Text = "mutated"
	draft.Subheadings[0].Heading = "mutated"

	st := s.Snapshot()
	if st.Quotes[0].Text == "mutated" || st.Article.Subheadings[0].Heading == "mutated" {
		t.Error("Store shares memory with the caller's draft")
	}
}

func TestStore_SnapshotIsolated(t *testing.T) {
	s := newLoadedStore(t)
	st := s.Snapshot()
	st.Facts[0].Content = "mutated"
	st.Article.Title = "mutated"

	again := s.Snapshot()
	if again.Facts[0].Content == "mutated" || again.Article.Title == "mutated" {
		t.Error("Snapshot shares memory with the store")
	}
}

func TestStore_UpdateFact(t *testing.T) {
	s := newLoadedStore(t)

	if err := s.UpdateFact("2", FactPatch{Content: strPtr("Edited")}); err != nil {
		t.Fatalf("UpdateFact failed: %v", err)
	}
	f := s.Snapshot().Facts[1]
	if f.Content != "Edited" || f.Title != "Key Fact 2" || f.Source != "Interview Transcript" {
		t.Errorf("Expected only content to change, got %+v", f)
	}

	err := s.UpdateFact("99", FactPatch{Content: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteFactKeepsIDs(t *testing.T) {
	s := newLoadedStore(t)

	if err := s.DeleteFact("2"); err != nil {
		t.Fatalf("DeleteFact failed: %v", err)
	}
	facts := s.Snapshot().Facts
	if len(facts) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(facts))
	}
	if facts[0].ID != "1" || facts[1].ID != "3" {
		t.Errorf("Expected ids 1 and 3, got %s and %s", facts[0].ID, facts[1].ID)
	}

	if err := s.DeleteFact("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_UpdateAndDeleteQuote(t *testing.T) {
	s := newLoadedStore(t)

	if err := s.UpdateQuote("1", QuotePatch{Text: strPtr("New text"), Speaker: strPtr("Mayor")}); err != nil {
		t.Fatalf("UpdateQuote failed: %v", err)
	}
	q := s.Snapshot().Quotes[0]
	if q.Text != "New text" || q.Speaker != "Mayor" || q.Timestamp != "00:00" {
		t.Errorf("Unexpected quote after update: %+v", q)
	}

	if err := s.DeleteQuote("1"); err != nil {
		t.Fatalf("DeleteQuote failed: %v", err)
	}
	quotes := s.Snapshot().Quotes
	if len(quotes) != 1 || quotes[0].ID != "2" {
		t.Errorf("Unexpected quotes after delete: %+v", quotes)
	}

	if err := s.UpdateQuote("1", QuotePatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_ArticleEdits(t *testing.T) {
	s := New()
	if err := s.UpdateArticle(ArticlePatch{Title: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound without an article, got %v", err)
	}

	s.ReplaceArticle(article.Parse(sampleResponse))
	if err := s.UpdateArticle(ArticlePatch{LeadParagraph: strPtr("New lead")}); err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}
	a := s.Snapshot().Article
	if a.Title != "Title" || a.LeadParagraph != "New lead" {
		t.Errorf("Unexpected article: %+v", a)
	}

	if err := s.UpdateSubheading("2", SubheadingPatch{Body: strPtr("Rewritten")}); err != nil {
		t.Fatalf("UpdateSubheading failed: %v", err)
	}
	if got := s.Snapshot().Article.Subheadings[1]; got.Heading != "Two" || got.Body != "Rewritten" {
		t.Errorf("Unexpected subheading: %+v", got)
	}
	if err := s.UpdateSubheading("7", SubheadingPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_AddSubheading(t *testing.T) {
	s := newLoadedStore(t)

	sub, err := s.AddSubheading()
	if err != nil {
		t.Fatalf("AddSubheading failed: %v", err)
	}
	if sub.ID != "3" || sub.Heading != "" || sub.Body != "" {
		t.Errorf("Unexpected new subheading: %+v", sub)
	}

	if _, err := New().AddSubheading(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound without an article, got %v", err)
	}
}

func TestStore_Draft(t *testing.T) {
	s := newLoadedStore(t)
	_ = s.DeleteQuote("2")

	d, ok := s.Draft()
	if !ok {
		t.Fatal("Expected a draft")
	}
	if len(d.Quotes) != 1 || len(d.Facts) != 3 || len(d.Subheadings) != 2 {
		t.Errorf("Unexpected draft: %+v", d)
	}
}

func TestStore_Processing(t *testing.T) {
	s := New()

	if !s.TryStartProcessing() {
		t.Fatal("Expected first TryStartProcessing to succeed")
	}
	if s.TryStartProcessing() {
		t.Error("Expected second TryStartProcessing to fail while busy")
	}
	s.SetProcessing(false)
	if s.Snapshot().IsProcessing {
		t.Error("Expected processing flag cleared")
	}

	s.SetTranscription("hello")
	if s.Snapshot().Transcription != "hello" {
		t.Error("Expected transcription to be stored")
	}
}

func TestStore_ConcurrentEdits(t *testing.T) {
	s := newLoadedStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.UpdateFact("1", FactPatch{Content: strPtr("c")})
			_ = s.UpdateQuote("2", QuotePatch{Text: strPtr("q")})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	st := s.Snapshot()
	if st.Facts[0].Content != "c" || st.Quotes[1].Text != "q" {
		t.Errorf("Unexpected state after concurrent edits: %+v", st)
	}
}
