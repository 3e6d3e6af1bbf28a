package model

import "time"

// Transcript is the plain text returned by the speech-to-text service
type Transcript struct {
	Text      string  `json:"text"`
	Language  string  `json:"language,omitempty"` // Requested or detected language
	AudioFile string  `json:"audio_file,omitempty"`
	Model     string  `json:"model,omitempty"`
	Duration  float64 `json:"duration_seconds,omitempty"` // Audio length when the service reports it
}

// ResponseFormat names the convention a drafting response was parsed with
type ResponseFormat string

const (
	FormatMarkdown ResponseFormat = "markdown" // # title / ## subheading / ### Notable Quotes
	FormatLegacy   ResponseFormat = "legacy"   // Title: / Lead Paragraph: blocks split by blank lines
	FormatUnknown  ResponseFormat = "unknown"  // Neither convention recognized; parsed as markdown
)

// DraftResult is everything produced for one interview
type DraftResult struct {
	Source      string         `json:"source"`                 // Audio file name or "transcript"
	Transcript  Transcript     `json:"transcript"`
	RawResponse string         `json:"raw_response"`           // Drafting model output, verbatim
	Format      ResponseFormat `json:"format"`
	Article     ArticleDraft   `json:"article"`
	Drafter     DrafterMeta    `json:"drafter"`
	Timings     Timings        `json:"timings"`
	CreatedAt   time.Time      `json:"created_at"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// DrafterMeta records which model drafted the article
type DrafterMeta struct {
	Provider   string `json:"provider"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	Cached     bool   `json:"cached"`
}

// Timings breaks down wall time per stage
type Timings struct {
	Transcribe time.Duration `json:"transcribe_ns"`
	Draft      time.Duration `json:"draft_ns"`
	Parse      time.Duration `json:"parse_ns"`
}
