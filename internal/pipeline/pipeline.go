package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/scribedesk/internal/article"
	"github.com/ppiankov/scribedesk/internal/cache"
	"github.com/ppiankov/scribedesk/internal/llm"
	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/worker"
)

// Version is reported by the CLI and sent as the loader's User-Agent
const Version = "0.1.0"

// ErrDraftingDisabled is returned when no drafting provider is configured
var ErrDraftingDisabled = errors.New("drafting disabled: no LLM provider configured")

// Pipeline runs audio → transcript → model response → ArticleDraft
type Pipeline struct {
	loader      *AudioLoader
	transcriber llm.Transcriber // nil when transcription is not configured
	drafter     llm.Drafter     // nil when drafting is disabled
	cache       cache.Cache     // nil when caching is disabled
	limiter     *worker.Limiter
	renderer    *Renderer
	config      *model.Config
}

// Deps lets callers supply collaborators directly instead of building them from config
type Deps struct {
	Transcriber llm.Transcriber
	Drafter     llm.Drafter
	Cache       cache.Cache
	Limiter     *worker.Limiter
}

// NewPipeline builds every collaborator from configuration.
// A transcriber that cannot be built is reported and left nil so transcript-only
// drafting still works; a broken drafter configuration is an error.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	var deps Deps

	transcriber, err := llm.NewTranscriber(llm.TranscriptionConfigFromModel(cfg.Transcription, cfg.HTTP))
	if err != nil {
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: transcription unavailable: %v\n", err)
		}
	} else {
		deps.Transcriber = transcriber
	}

	drafter, err := llm.NewDrafter(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	deps.Drafter = drafter

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	deps.Cache = c

	return NewPipelineWithDeps(cfg, deps), nil
}

// NewPipelineWithDeps creates a pipeline around the given collaborators
func NewPipelineWithDeps(cfg *model.Config, deps Deps) *Pipeline {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		for key, override := range cfg.RateLimiting.Providers {
			limiter.SetRate(key, override.RequestsPerSecond, override.BurstSize)
		}
	}

	return &Pipeline{
		loader:      NewAudioLoader(cfg.HTTP, time.Duration(cfg.Transcription.Timeout)*time.Second),
		transcriber: deps.Transcriber,
		drafter:     deps.Drafter,
		cache:       deps.Cache,
		limiter:     limiter,
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
	}
}

// Renderer returns the renderer configured for this pipeline
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// ProcessFile drafts an article from a local audio file or audio URL
func (p *Pipeline) ProcessFile(ctx context.Context, source string) (*model.DraftResult, error) {
	audio, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}

	result, err := p.ProcessAudio(ctx, audio.Name, audio.Data)
	if err != nil {
		return nil, err
	}
	result.Source = source
	return result, nil
}

// ProcessAudio drafts an article from in-memory audio (e.g. an HTTP upload)
func (p *Pipeline) ProcessAudio(ctx context.Context, name string, data []byte) (*model.DraftResult, error) {
	if err := p.loader.CheckAudio(name, data); err != nil {
		return nil, err
	}
	if p.transcriber == nil {
		return nil, fmt.Errorf("transcription unavailable: check the transcription API key")
	}

	start := time.Now()
	transcript, err := p.transcribe(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	transcribeTime := time.Since(start)

	result, err := p.draft(ctx, *transcript)
	if err != nil {
		return nil, err
	}
	result.Source = name
	result.Timings.Transcribe = transcribeTime
	return result, nil
}

// ProcessTranscript drafts an article from text that is already transcribed
func (p *Pipeline) ProcessTranscript(ctx context.Context, text string) (*model.DraftResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	result, err := p.draft(ctx, model.Transcript{Text: text})
	if err != nil {
		return nil, err
	}
	result.Source = "transcript"
	return result, nil
}

// ParseOnly parses a saved model response without calling any service
func (p *Pipeline) ParseOnly(raw string) *model.DraftResult {
	start := time.Now()
	draft, format := article.ParseResponse(raw)

	result := &model.DraftResult{
		Source:      "response",
		RawResponse: raw,
		Format:      format,
		Article:     draft,
		CreatedAt:   time.Now().UTC(),
	}
	result.Timings.Parse = time.Since(start)
	result.Warnings = draftWarnings(draft, format)
	return result
}

func (p *Pipeline) transcribe(ctx context.Context, name string, data []byte) (*model.Transcript, error) {
	language := p.config.Transcription.Language
	key := cache.Key(cache.NamespaceTranscript, data, []byte(p.config.Transcription.Model), []byte(language))

	if p.cache != nil {
		if raw, ok := p.cache.Get(ctx, key); ok {
			var cached model.Transcript
			if err := json.Unmarshal(raw, &cached); err == nil {
				if p.config.Output.Verbose {
					fmt.Fprintf(os.Stderr, "✓ Transcript cache hit for %s\n", name)
				}
				cached.AudioFile = name
				return &cached, nil
			}
		}
	}

	if err := p.acquire(ctx, "transcribe:"+p.transcriber.Name()); err != nil {
		return nil, err
	}

	transcript, err := p.transcriber.Transcribe(ctx, llm.TranscribeRequest{
		FileName: name,
		Audio:    data,
		Language: language,
	})
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if raw, err := json.Marshal(transcript); err == nil {
			if err := p.cache.Set(ctx, key, raw, 0); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to cache transcript: %v\n", err)
			}
		}
	}
	return transcript, nil
}

// draft asks the model for an article and parses the response
func (p *Pipeline) draft(ctx context.Context, transcript model.Transcript) (*model.DraftResult, error) {
	if p.drafter == nil {
		return nil, ErrDraftingDisabled
	}

	start := time.Now()
	resp, cached, err := p.requestDraft(ctx, transcript.Text)
	if err != nil {
		return nil, fmt.Errorf("draft: %w", err)
	}
	draftTime := time.Since(start)

	start = time.Now()
	draft, format := article.ParseResponse(resp.Content)
	parseTime := time.Since(start)

	return &model.DraftResult{
		Transcript:  transcript,
		RawResponse: resp.Content,
		Format:      format,
		Article:     draft,
		Drafter: model.DrafterMeta{
			Provider:   p.drafter.Name(),
			Model:      resp.Model,
			TokensUsed: resp.TokensUsed,
			Cached:     cached,
		},
		Timings: model.Timings{
			Draft: draftTime,
			Parse: parseTime,
		},
		CreatedAt: time.Now().UTC(),
		Warnings:  draftWarnings(draft, format),
	}, nil
}

func (p *Pipeline) requestDraft(ctx context.Context, transcript string) (*llm.DraftResponse, bool, error) {
	key := cache.Key(cache.NamespaceDraft, []byte(transcript), []byte(p.drafter.Name()), []byte(p.config.LLM.Model))

	if p.cache != nil {
		if raw, ok := p.cache.Get(ctx, key); ok {
			var cached llm.DraftResponse
			if err := json.Unmarshal(raw, &cached); err == nil && cached.Content != "" {
				return &cached, true, nil
			}
		}
	}

	if err := p.acquire(ctx, p.drafter.Name()); err != nil {
		return nil, false, err
	}

	resp, err := p.drafter.Draft(ctx, llm.DraftRequest{Transcript: transcript})
	if err != nil {
		return nil, false, err
	}

	if p.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := p.cache.Set(ctx, key, raw, 0); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to cache draft: %v\n", err)
			}
		}
	}
	return resp, false, nil
}

// acquire takes a token for key, waiting (and saying so when verbose) if none is free
func (p *Pipeline) acquire(ctx context.Context, key string) error {
	if p.limiter.Allow(key) {
		return nil
	}
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Waiting for %s rate limit...\n", key)
	}
	if err := p.limiter.Wait(ctx, key); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// draftWarnings flags drafts an editor should look at before publishing
func draftWarnings(d model.ArticleDraft, format model.ResponseFormat) []string {
	var warnings []string
	switch format {
	case model.FormatLegacy:
		warnings = append(warnings, "response used the legacy block layout")
	case model.FormatUnknown:
		warnings = append(warnings, "response had no recognised headings; everything landed in the lead")
	}
	if d.Title == "" {
		warnings = append(warnings, "no title")
	}
	if len(d.Subheadings) == 0 {
		warnings = append(warnings, "no subheadings")
	}
	if len(d.Quotes) == 0 {
		warnings = append(warnings, "no pull quotes")
	}
	if len(d.Facts) == 0 {
		warnings = append(warnings, "no fact boxes")
	}
	return warnings
}
