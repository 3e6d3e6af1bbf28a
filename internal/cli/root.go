package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scribedesk",
	Short: "Scribedesk - turn recorded interviews into structured article drafts",
	Long: `Scribedesk transcribes a recorded interview and asks a language model to
draft a news article from it: a title, a lead paragraph, subheadings with body
text, pull quotes and key facts.

The draft is a starting point for an editor. Quotes are attributed to a
placeholder speaker until someone checks them against the recording.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scribedesk v%s\n", pipeline.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.scribedesk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// Keys that can be set through SCRIBEDESK_* variables, e.g. SCRIBEDESK_LLM_PROVIDER
var envKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout", "llm.max_tokens", "llm.temperature",
	"transcription.provider", "transcription.model", "transcription.api_key", "transcription.base_url",
	"transcription.language", "transcription.timeout",
	"http.max_audio_bytes", "http.http_proxy", "http.https_proxy", "http.no_proxy",
	"cache.enabled", "cache.backend", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"cache.redis.addr", "cache.redis.password", "cache.redis.db",
	"concurrency.workers",
	"rate_limiting.requests_per_second", "rate_limiting.burst_size",
	"server.addr", "server.request_timeout", "server.max_upload_bytes",
	"output.include_footer",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.scribedesk")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SCRIBEDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, SCRIBEDESK_* variables and provider API key variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	applyEnvAPIKeys(cfg)
	return cfg, nil
}

// applyEnvAPIKeys fills credentials from the providers' conventional variables
// when the config file does not set them
func applyEnvAPIKeys(cfg *model.Config) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "cohere":
			cfg.LLM.APIKey = os.Getenv("COHERE_API_KEY")
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.Transcription.APIKey == "" {
		cfg.Transcription.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// requireDrafter fails early when the selected provider has no credentials
func requireDrafter(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "":
		return pipeline.ErrDraftingDisabled
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "cohere":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("COHERE_API_KEY environment variable not set")
		}
	}
	return nil
}
