package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	outHTML        string
	draftTimeout   time.Duration
	language       string
	noCache        bool
	noFooter       bool
	fromTranscript bool
	llmProvider    string
	llmModel       string
)

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft <audio>",
	Short: "Transcribe one interview and draft an article from it",
	Long: `Draft transcribes an audio file (or an http(s) URL to one), sends the
transcript to the configured language model and parses the response into a
structured article.

Without --json, --md or --html the article is printed to stdout as Markdown.

Example:
  scribedesk draft interview.mp3
  scribedesk draft interview.m4a --json draft.json --md draft.md --html draft.html
  scribedesk draft interview.wav --language de --llm-provider anthropic
  scribedesk draft notes.txt --from-transcript`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	// Output flags
	draftCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (full result)")
	draftCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	draftCmd.Flags().StringVar(&outHTML, "html", "", "output HTML path")
	draftCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown and HTML files")

	draftCmd.Flags().DurationVar(&draftTimeout, "timeout", 5*time.Minute, "overall timeout")
	draftCmd.Flags().StringVar(&language, "language", "", "transcription language hint (ISO-639-1, e.g. en, de)")
	draftCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh transcription and draft)")
	draftCmd.Flags().BoolVar(&fromTranscript, "from-transcript", false, "treat the argument as a text transcript and skip transcription")

	// LLM flags
	draftCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, cohere)")
	draftCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyDraftFlags lets explicitly set flags override the loaded config
func applyDraftFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		if !flags.Changed("llm-model") {
			cfg.LLM.Model = ""
		}
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("language") {
		cfg.Transcription.Language = language
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	applyEnvAPIKeys(cfg)
}

func runDraft(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), draftTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDraftFlags(cmd, cfg)
	if err := requireDrafter(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Drafting: %s\n", source)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	var result *model.DraftResult
	if fromTranscript {
		text, err := readInput(source)
		if err != nil {
			return err
		}
		result, err = p.ProcessTranscript(ctx, text)
		if err != nil {
			return fmt.Errorf("draft failed: %w", err)
		}
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Transcribing audio...\n")
		}
		result, err = p.ProcessFile(ctx, source)
		if err != nil {
			return fmt.Errorf("draft failed: %w", err)
		}
	}

	if verbose {
		if result.Timings.Transcribe > 0 {
			fmt.Fprintf(os.Stderr, "✓ Transcribed in %v\n", result.Timings.Transcribe.Round(time.Millisecond))
		}
		fmt.Fprintf(os.Stderr, "✓ Drafted with %s/%s (%d tokens)\n", result.Drafter.Provider, result.Drafter.Model, result.Drafter.TokensUsed)
		fmt.Fprintln(os.Stderr)
	}

	return writeOutputs(p.Renderer(), result)
}

// writeOutputs renders result to every requested file, or Markdown on stdout when none is
func writeOutputs(r *pipeline.Renderer, result *model.DraftResult) error {
	wrote := false
	if outJSON != "" {
		if err := r.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
		wrote = true
	}
	if outMD != "" {
		if err := r.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outMD)
		wrote = true
	}
	if outHTML != "" {
		if err := r.RenderHTML(result, outHTML); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outHTML)
		wrote = true
	}

	if !wrote {
		fmt.Print(r.MarkdownArticle(result.Article))
	}
	if verbose || wrote {
		fmt.Fprintln(os.Stderr)
		r.RenderSummary(os.Stderr, result)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-"
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
