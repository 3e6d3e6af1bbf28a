package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/scribedesk/internal/pipeline"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a saved model response into a structured article",
	Long: `Parse reads a drafting model's response from a file (or stdin) and turns it
into a structured article without calling any service. Both the Markdown
heading layout and the older "Title:" block layout are understood.

Without --json, --md or --html the article is printed to stdout as JSON.

Example:
  scribedesk parse response.txt
  cat response.txt | scribedesk parse - --md article.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (full result)")
	parseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	parseCmd.Flags().StringVar(&outHTML, "html", "", "output HTML path")
	parseCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown and HTML files")
}

func runParse(cmd *cobra.Command, args []string) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	raw, err := readInput(source)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}

	// No collaborators: parsing never leaves the process
	p := pipeline.NewPipelineWithDeps(cfg, pipeline.Deps{})
	result := p.ParseOnly(raw)
	result.Source = source

	if outJSON == "" && outMD == "" && outHTML == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Article); err != nil {
			return fmt.Errorf("encode article: %w", err)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		return nil
	}

	return writeOutputs(p.Renderer(), result)
}
