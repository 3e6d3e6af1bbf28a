package llm

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/ppiankov/scribedesk/internal/util"
)

const defaultCohereModel = "command-r-plus"

// CohereProvider implements the Drafter interface using Cohere's chat endpoint
type CohereProvider struct {
	client *cohereclient.Client
	config Config
}

// NewCohereProvider creates a new Cohere provider
func NewCohereProvider(config Config) (*CohereProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Cohere API key is required")
	}

	// Force HTTP/1.1; the Cohere edge resets some HTTP/2 streams on long generations
	httpClient := &http.Client{
		Timeout: timeoutOf(config, 60*time.Second),
		Transport: &http.Transport{
			Proxy:             util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	opts := []option.RequestOption{
		cohereclient.WithToken(config.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	}
	if config.BaseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")))
	}

	return &CohereProvider{
		client: cohereclient.NewClient(opts...),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *CohereProvider) Name() string {
	return "cohere"
}

// IsAvailable checks if the provider is properly configured
func (p *CohereProvider) IsAvailable(ctx context.Context) bool {
	maxTokens := 5
	_, err := p.client.Chat(ctx, &cohere.ChatRequest{
		Message:   "Hi",
		MaxTokens: &maxTokens,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cohere API check failed: %v\n", err)
		return false
	}
	return true
}

// Draft generates an article using Cohere's chat API
func (p *CohereProvider) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	system, user := BuildDraftPrompt(req.Transcript)
	modelName := resolveModel(req.Model, p.config.Model, defaultCohereModel)
	maxTokens := resolveMaxTokens(req.MaxTokens, p.config.MaxTokens)
	temperature := float64(p.config.Temperature)

	ctx, cancel := context.WithTimeout(ctx, timeoutOf(p.config, 60*time.Second))
	defer cancel()

	resp, err := p.client.Chat(ctx, &cohere.ChatRequest{
		Message:     user,
		Preamble:    &system,
		Model:       &modelName,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("Cohere API error: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("no content in Cohere response")
	}

	return &DraftResponse{
		Content:    strings.TrimSpace(resp.Text),
		Model:      modelName,
		TokensUsed: cohereTokens(resp),
	}, nil
}

func cohereTokens(resp *cohere.NonStreamedChatResponse) int {
	if resp.Meta == nil || resp.Meta.BilledUnits == nil {
		return 0
	}
	total := 0.0
	if in := resp.Meta.BilledUnits.InputTokens; in != nil {
		total += *in
	}
	if out := resp.Meta.BilledUnits.OutputTokens; out != nil {
		total += *out
	}
	return int(total)
}
