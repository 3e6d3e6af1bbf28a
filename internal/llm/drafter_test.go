package llm

import (
	"strings"
	"testing"

	"github.com/ppiankov/scribedesk/internal/model"
)

func TestNewDrafter(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"disabled", Config{}, "", false},
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"openai upper case", Config{Provider: "OpenAI", APIKey: "k"}, "openai", false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "k"}, "anthropic", false},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"cohere", Config{Provider: "cohere", APIKey: "k"}, "cohere", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "gemini"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafter, err := NewDrafter(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantName == "" {
				if drafter != nil {
					t.Errorf("Expected nil drafter when disabled, got %s", drafter.Name())
				}
				return
			}
			if drafter.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, drafter.Name())
			}
		})
	}
}

func TestNewTranscriber(t *testing.T) {
	tr, err := NewTranscriber(Config{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tr.Name() != "openai" {
		t.Errorf("Expected openai, got %s", tr.Name())
	}

	if _, err := NewTranscriber(Config{Provider: "deepgram", APIKey: "k"}); err == nil {
		t.Error("Expected error for unknown transcription provider")
	}
}

func TestBuildDraftPrompt(t *testing.T) {
	system, user := BuildDraftPrompt("We opened the bridge in 1998.")

	if !strings.Contains(system, "same language as the transcript") {
		t.Errorf("System prompt must pin the output language, got %q", system)
	}

	for _, want := range []string{
		"# <a compelling title>",
		"## <subheading>",
		"### Notable Quotes",
		"### Key Facts",
		"1. \"<quote",
		"Transcript: We opened the bridge in 1998.",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("Expected user prompt to contain %q", want)
		}
	}

	// Quotes must be requested before facts; the parser treats both as terminal sections
	if strings.Index(user, "### Notable Quotes") > strings.Index(user, "### Key Facts") {
		t.Error("Expected quotes section before facts section")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.HTTP.HTTPSProxy = "http://proxy:3128"

	c := ConfigFromModel(cfg.LLM, cfg.HTTP)
	if c.Provider != "openai" || c.Model != "gpt-4o-mini" || c.Temperature != 0.7 {
		t.Errorf("Unexpected drafting config: %+v", c)
	}
	if c.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("Expected proxy carried over, got %q", c.HTTPSProxy)
	}

	tc := TranscriptionConfigFromModel(cfg.Transcription, cfg.HTTP)
	if tc.Model != "whisper-1" || tc.Timeout != 120 {
		t.Errorf("Unexpected transcription config: %+v", tc)
	}
}
