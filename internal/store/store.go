// Package store holds the article being edited: the current draft, its quotes and facts,
// and the transcription that produced it. A Store is owned by its caller and passed to
// whatever edits or renders it.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ppiankov/scribedesk/internal/model"
)

// ErrNotFound is returned when an update or delete names an unknown id
var ErrNotFound = errors.New("not found")

// State is a point-in-time copy of the store
type State struct {
	Transcription string              `json:"transcription"`
	IsProcessing  bool                `json:"isProcessing"`
	Article       *model.ArticleDraft `json:"article"` // nil until the first draft arrives
	Quotes        []model.PullQuote   `json:"quotes"`
	Facts         []model.FactBox     `json:"facts"`
}

// ArticlePatch edits the article text; nil fields are left unchanged
type ArticlePatch struct {
	Title         *string `json:"title,omitempty"`
	LeadParagraph *string `json:"leadParagraph,omitempty"`
}

// SubheadingPatch edits one subheading
type SubheadingPatch struct {
	Heading *string `json:"heading,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// QuotePatch edits one pull quote
type QuotePatch struct {
	Text      *string `json:"text,omitempty"`
	Speaker   *string `json:"speaker,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
}

// FactPatch edits one fact box
type FactPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Source  *string `json:"source,omitempty"`
}

// Store is safe for concurrent use
type Store struct {
	mu            sync.RWMutex
	transcription string
	processing    bool
	article       *model.ArticleDraft // Title, lead and subheadings; quotes/facts live below
	quotes        []model.PullQuote
	facts         []model.FactBox
}

// New creates an empty store
func New() *Store {
	return &Store{
		quotes: []model.PullQuote{},
		facts:  []model.FactBox{},
	}
}

// ReplaceArticle installs a freshly parsed draft, replacing article, quotes and facts
func (s *Store) ReplaceArticle(draft model.ArticleDraft) {
	d := draft.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = d.Quotes
	s.facts = d.Facts
	d.Quotes = nil
	d.Facts = nil
	s.article = &d
}

// UpdateArticle edits the title or lead paragraph
func (s *Store) UpdateArticle(patch ArticlePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.article == nil {
		return fmt.Errorf("article: %w", ErrNotFound)
	}
	if patch.Title != nil {
		s.article.Title = *patch.Title
	}
	if patch.LeadParagraph != nil {
		s.article.LeadParagraph = *patch.LeadParagraph
	}
	return nil
}

// AddSubheading appends an empty subheading and returns it
func (s *Store) AddSubheading() (model.Subheading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.article == nil {
		return model.Subheading{}, fmt.Errorf("article: %w", ErrNotFound)
	}
	subs := s.article.Subheadings
	sub := model.Subheading{ID: nextID(len(subs), func(i int) string { return subs[i].ID })}
	s.article.Subheadings = append(s.article.Subheadings, sub)
	return sub, nil
}

// UpdateSubheading edits the subheading with the given id
func (s *Store) UpdateSubheading(id string, patch SubheadingPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.article == nil {
		return fmt.Errorf("article: %w", ErrNotFound)
	}
	for i := range s.article.Subheadings {
		sub := &s.article.Subheadings[i]
		if sub.ID != id {
			continue
		}
		if patch.Heading != nil {
			sub.Heading = *patch.Heading
		}
		if patch.Body != nil {
			sub.Body = *patch.Body
		}
		return nil
	}
	return fmt.Errorf("subheading %s: %w", id, ErrNotFound)
}

// UpdateQuote edits the quote with the given id
func (s *Store) UpdateQuote(id string, patch QuotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.quotes {
		q := &s.quotes[i]
		if q.ID != id {
			continue
		}
		if patch.Text != nil {
			q.Text = *patch.Text
		}
		if patch.Speaker != nil {
			q.Speaker = *patch.Speaker
		}
		if patch.Timestamp != nil {
			q.Timestamp = *patch.Timestamp
		}
		return nil
	}
	return fmt.Errorf("quote %s: %w", id, ErrNotFound)
}

// DeleteQuote removes the quote with the given id; remaining ids are not renumbered
func (s *Store) DeleteQuote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, q := range s.quotes {
		if q.ID == id {
			s.quotes = append(s.quotes[:i:i], s.quotes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("quote %s: %w", id, ErrNotFound)
}

// UpdateFact edits the fact with the given id
func (s *Store) UpdateFact(id string, patch FactPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.facts {
		f := &s.facts[i]
		if f.ID != id {
			continue
		}
		if patch.Title != nil {
			f.Title = *patch.Title
		}
		if patch.Content != nil {
			f.Content = *patch.Content
		}
		if patch.Source != nil {
			f.Source = *patch.Source
		}
		return nil
	}
	return fmt.Errorf("fact %s: %w", id, ErrNotFound)
}

// DeleteFact removes the fact with the given id; remaining ids are not renumbered
func (s *Store) DeleteFact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.facts {
		if f.ID == id {
			s.facts = append(s.facts[:i:i], s.facts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fact %s: %w", id, ErrNotFound)
}

// SetTranscription records the transcript the current draft came from
func (s *Store) SetTranscription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcription = text
}

// SetProcessing flags whether a transcription/drafting run is in flight
func (s *Store) SetProcessing(processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = processing
}

// TryStartProcessing sets the processing flag unless it is already set
func (s *Store) TryStartProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Transcription: s.transcription,
		IsProcessing:  s.processing,
		Quotes:        append([]model.PullQuote{}, s.quotes...),
		Facts:         append([]model.FactBox{}, s.facts...),
	}
	if s.article != nil {
		a := s.article.Clone()
		st.Article = &a
	}
	return st
}

// Draft reassembles the edited article, quotes and facts into one draft
func (s *Store) Draft() (model.ArticleDraft, bool) {
	st := s.Snapshot()
	if st.Article == nil {
		return model.NewArticleDraft(), false
	}
	d := *st.Article
	d.Quotes = st.Quotes
	d.Facts = st.Facts
	return d, true
}

// nextID returns one past the largest numeric id, so ids stay unique after deletes
func nextID(n int, idAt func(int) string) string {
	highest := 0
	for i := 0; i < n; i++ {
		if v, err := strconv.Atoi(idAt(i)); err == nil && v > highest {
			highest = v
		}
	}
	return model.SequenceID(highest + 1)
}
