package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/scribedesk/internal/pipeline"
	"github.com/ppiankov/scribedesk/internal/server"
	"github.com/ppiankov/scribedesk/internal/store"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the drafting API and the editable article over HTTP",
	Long: `Serve starts an HTTP API around one shared article. Upload a recording (or
post a transcript) to draft it, then edit the title, lead, subheadings, quotes
and facts, and export the result as Markdown, HTML or JSON.

Example:
  scribedesk serve
  scribedesk serve --addr 127.0.0.1:9000 --verbose`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, cohere)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	serveCmd.Flags().StringVar(&language, "language", "", "transcription language hint (ISO-639-1, e.g. en, de)")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDraftFlags(cmd, cfg)
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	// The server still parses and edits articles when drafting is unavailable
	if err := requireDrafter(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg.LLM.Provider = ""
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, store.New(), p, p.Renderer(), cfg.Output.Verbose)
	return srv.Run(ctx)
}
