// Manual smoke test: drafts a short sample transcript with every provider that has
// credentials in the environment (or .env) and prints what the parser extracted.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ppiankov/scribedesk/internal/article"
	"github.com/ppiankov/scribedesk/internal/llm"
)

const sampleTranscript = `Interviewer: Thanks for joining us. What happened at the harbour this winter?
Mayor: We had three storm surges in six weeks. The old sea wall simply gave way at the north end.
Interviewer: And the plan now?
Mayor: A new wall, two point four kilometres long, paid for mostly by the regional grant. We start in March.
Interviewer: Will residents see higher taxes?
Mayor: No. I promised that and I will keep it. We will not flood again.`

func main() {
	_ = godotenv.Load()
	fmt.Println("=== Drafting Provider Check ===")
	fmt.Println()

	configs := []llm.Config{
		{Provider: "openai", APIKey: os.Getenv("OPENAI_API_KEY")},
		{Provider: "anthropic", APIKey: os.Getenv("ANTHROPIC_API_KEY")},
		{Provider: "cohere", APIKey: os.Getenv("COHERE_API_KEY")},
		{Provider: "ollama", BaseURL: os.Getenv("OLLAMA_BASE_URL"), Model: os.Getenv("OLLAMA_MODEL")},
	}

	for _, cfg := range configs {
		fmt.Printf("Provider: %s\n", cfg.Provider)
		fmt.Println(strings.Repeat("-", 60))

		if cfg.Provider != "ollama" && cfg.APIKey == "" {
			fmt.Println("  - skipped (no API key)")
			fmt.Println()
			continue
		}
		if cfg.Provider == "ollama" && cfg.Model == "" {
			fmt.Println("  - skipped (set OLLAMA_MODEL)")
			fmt.Println()
			continue
		}

		check(cfg)
		fmt.Println()
	}

	fmt.Println("=== Check Complete ===")
	fmt.Println("\nNote: quotes and facts carry placeholder attribution until edited.")
}

func check(cfg llm.Config) {
	cfg.Timeout = 120
	cfg.MaxTokens = 1200
	cfg.Temperature = 0.7

	drafter, err := llm.NewDrafter(cfg)
	if err != nil {
		fmt.Printf("  ✗ init: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if !drafter.IsAvailable(ctx) {
		fmt.Println("  ✗ not available")
		return
	}

	start := time.Now()
	resp, err := drafter.Draft(ctx, llm.DraftRequest{Transcript: sampleTranscript})
	if err != nil {
		fmt.Printf("  ✗ draft: %v\n", err)
		return
	}

	draft, format := article.ParseResponse(resp.Content)
	fmt.Printf("  ✓ %s in %v (%d tokens, %s layout)\n", resp.Model, time.Since(start).Round(time.Millisecond), resp.TokensUsed, format)
	fmt.Printf("     - Title: %s\n", draft.Title)
	fmt.Printf("     - Subheadings: %d\n", len(draft.Subheadings))
	for _, sub := range draft.Subheadings {
		fmt.Printf("         %s\n", sub.Heading)
	}
	fmt.Printf("     - Quotes: %d\n", len(draft.Quotes))
	for _, q := range draft.Quotes {
		fmt.Printf("         \"%s\"\n", q.Text)
	}
	fmt.Printf("     - Facts: %d\n", len(draft.Facts))
	if draft.Title == "" || len(draft.Quotes) == 0 || len(draft.Facts) == 0 {
		fmt.Println("  ⚠️  Response did not follow the expected layout")
	}
}
