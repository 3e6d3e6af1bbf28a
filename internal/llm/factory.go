package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/scribedesk/internal/model"
)

// NewDrafter creates a drafting provider based on configuration
func NewDrafter(config Config) (Drafter, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "cohere":
		return NewCohereProvider(config)

	case "":
		// No provider configured - drafting disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, cohere)", config.Provider)
	}
}

// NewTranscriber creates a speech-to-text provider based on configuration
func NewTranscriber(config Config) (Transcriber, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "whisper", "":
		return NewWhisperTranscriber(config)
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts the drafting section of model.Config to llm.Config
func ConfigFromModel(cfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}
}

// TranscriptionConfigFromModel converts the transcription section of model.Config
func TranscriptionConfigFromModel(cfg model.TranscriptionConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Language:   cfg.Language,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}
