package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/util"
)

// Drafter defines the interface for models that draft articles from transcripts
type Drafter interface {
	// Name returns the provider name
	Name() string

	// Draft asks the model for a markdown article built from the transcript
	Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Transcriber turns recorded audio into text
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, req TranscribeRequest) (*model.Transcript, error)
}

// DraftRequest contains the input for article drafting
type DraftRequest struct {
	// Transcript is the interview text the article is written from
	Transcript string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// DraftResponse is the raw model output; parsing happens in the article package
type DraftResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// TranscribeRequest carries one audio recording
type TranscribeRequest struct {
	// FileName is sent with the upload; the service infers the format from its extension
	FileName string
	Audio    []byte

	// Language is an optional ISO-639-1 hint
	Language string
}

// Config holds provider configuration shared by drafters and transcribers
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "cohere", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies, test servers)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	MaxTokens   int
	Temperature float32

	// Language hint for transcription
	Language string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

const draftSystemPrompt = "You are a professional journalist who specializes in creating well-structured articles " +
	"from interview transcripts. Extract key information, quotes, and facts to create an engaging article. " +
	"IMPORTANT: Always write the article in the same language as the transcript provided."

// BuildDraftPrompt returns the system and user messages for drafting.
// The user message pins down the markdown layout that article.Parse reads.
func BuildDraftPrompt(transcript string) (system, user string) {
	var b strings.Builder
	b.WriteString("Please analyze this interview transcript and write an article in markdown using exactly this layout:\n\n")
	b.WriteString("# <a compelling title>\n")
	b.WriteString("<a lead paragraph that hooks the reader>\n\n")
	b.WriteString("## <subheading>\n")
	b.WriteString("<content for this subheading>\n\n")
	b.WriteString("(2-3 subheadings in total)\n\n")
	b.WriteString("### Notable Quotes\n")
	b.WriteString("1. \"<quote from the interview>\"\n")
	b.WriteString("(2-3 numbered quotes)\n\n")
	b.WriteString("### Key Facts\n")
	b.WriteString("1. <fact or statistic mentioned>\n")
	b.WriteString("(3 numbered facts)\n\n")
	b.WriteString("Do not add any other headings, and do not put text after the Key Facts list.\n\n")
	fmt.Fprintf(&b, "Transcript: %s", transcript)

	return draftSystemPrompt, b.String()
}

// resolveModel picks the request model, then the configured one, then the fallback
func resolveModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 2000
}

func timeoutOf(config Config, fallback time.Duration) time.Duration {
	if config.Timeout <= 0 {
		return fallback
	}
	return time.Duration(config.Timeout) * time.Second
}

// newHTTPClient builds the outbound client every provider uses, honoring proxy settings
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
