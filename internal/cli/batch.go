package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/scribedesk/internal/pipeline"
	"github.com/ppiankov/scribedesk/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchHTML    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file|dir>",
	Short: "Draft articles for many interviews in parallel",
	Long: `Batch drafts an article for every recording in a directory, or for every
path listed in a file (one per line, # starts a comment, relative paths are
resolved against the list file's directory).

Each recording gets <name>.json and <name>.md in the output directory. A file
that fails is reported and never stops the rest of the batch.

Example:
  scribedesk batch ./interviews
  scribedesk batch interviews.txt --concurrency 4 --output-dir ./drafts
  scribedesk batch ./interviews --html --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./scribedesk-drafts", "output directory for drafts")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchHTML, "html", false, "also write an HTML page per draft")

	batchCmd.Flags().StringVar(&language, "language", "", "transcription language hint (ISO-639-1, e.g. en, de)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh transcription and draft)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown and HTML files")

	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, cohere)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDraftFlags(cmd, cfg)
	if err := requireDrafter(cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	kind := "list file"
	if info.IsDir() {
		kind = "directory"
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Scribedesk Batch Drafting\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s (%s)\n", input, kind)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}
	renderer := p.Renderer()

	names := newNameSet()
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	processor.Progress = func(r *worker.DraftResult) {
		// Runs on the pool's single collector goroutine; files are written as results
		// arrive so an interrupted batch keeps its finished drafts
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			return
		}

		base := filepath.Join(outputDir, names.claim(sanitizeFilename(r.Path)))
		if err := renderer.RenderJSON(r.Result, base+".json"); err != nil {
			r.Error = err
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", r.Path, err)
			return
		}
		if err := renderer.RenderMarkdown(r.Result, base+".md"); err != nil {
			r.Error = err
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", r.Path, err)
			return
		}
		if batchHTML {
			if err := renderer.RenderHTML(r.Result, base+".html"); err != nil {
				r.Error = err
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write HTML: %v\n", r.Path, err)
				return
			}
		}

		title := r.Result.Article.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(os.Stderr, "✓ %s → %s\n", r.Path, title)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Drafting with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := draftInput(ctx, processor, input, info.IsDir())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "Nothing to do\n")
		return nil
	}
	succeeded, failed := worker.Summary(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d recordings\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(results))
	}
	return nil
}

// draftInput drafts every supported recording in a directory, or every path in a list file
func draftInput(ctx context.Context, processor *worker.BatchProcessor, input string, isDir bool) ([]*worker.DraftResult, error) {
	if !isDir {
		return processor.ProcessList(ctx, input)
	}
	paths, err := audioFilesIn(input)
	if err != nil {
		return nil, err
	}
	return processor.ProcessFiles(ctx, paths), nil
}

// audioFilesIn lists supported recordings in a directory, sorted by name
func audioFilesIn(input string) ([]string, error) {
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !pipeline.IsSupportedAudio(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(input, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// sanitizeFilename turns a recording path into an output file stem
func sanitizeFilename(path string) string {
	s := filepath.Base(path)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "draft"
	}
	return s
}

// nameSet hands out unique stems when two recordings share a base name
type nameSet map[string]int

func newNameSet() nameSet { return nameSet{} }

func (n nameSet) claim(stem string) string {
	n[stem]++
	if n[stem] == 1 {
		return stem
	}
	return fmt.Sprintf("%s-%d", stem, n[stem])
}
