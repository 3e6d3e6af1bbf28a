package llm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/scribedesk/internal/model"
)

// OpenAIProvider implements the Drafter interface for OpenAI chat models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	client, err := newOpenAIClient(config, 60*time.Second)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{
		client: client,
		config: config,
	}, nil
}

func newOpenAIClient(config Config, fallbackTimeout time.Duration) (*openai.Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(config, timeoutOf(config, fallbackTimeout))

	return openai.NewClientWithConfig(clientConfig), nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Draft generates an article using OpenAI's Chat Completions API
func (p *OpenAIProvider) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	system, user := BuildDraftPrompt(req.Transcript)
	modelName := resolveModel(req.Model, p.config.Model, openai.GPT4oMini)

	ctx, cancel := context.WithTimeout(ctx, timeoutOf(p.config, 60*time.Second))
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   resolveMaxTokens(req.MaxTokens, p.config.MaxTokens),
		Temperature: p.config.Temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &DraftResponse{
		Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      modelName,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// WhisperTranscriber implements Transcriber with OpenAI's audio transcription endpoint
type WhisperTranscriber struct {
	client *openai.Client
	config Config
}

// NewWhisperTranscriber creates a transcriber; uploads can be slow so the default timeout is longer
func NewWhisperTranscriber(config Config) (*WhisperTranscriber, error) {
	client, err := newOpenAIClient(config, 120*time.Second)
	if err != nil {
		return nil, err
	}
	return &WhisperTranscriber{client: client, config: config}, nil
}

// Name returns the provider name
func (t *WhisperTranscriber) Name() string {
	return "openai"
}

// Transcribe uploads the audio and returns the recognised text
func (t *WhisperTranscriber) Transcribe(ctx context.Context, req TranscribeRequest) (*model.Transcript, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("audio is empty")
	}
	name := req.FileName
	if name == "" {
		name = "audio.webm"
	}
	language := req.Language
	if language == "" {
		language = t.config.Language
	}
	modelName := resolveModel("", t.config.Model, openai.Whisper1)

	ctx, cancel := context.WithTimeout(ctx, timeoutOf(t.config, 120*time.Second))
	defer cancel()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    modelName,
		FilePath: name,
		Reader:   bytes.NewReader(req.Audio),
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	detected := resp.Language
	if detected == "" {
		detected = language
	}

	return &model.Transcript{
		Text:      strings.TrimSpace(resp.Text),
		Language:  detected,
		AudioFile: name,
		Model:     modelName,
		Duration:  resp.Duration,
	}, nil
}
