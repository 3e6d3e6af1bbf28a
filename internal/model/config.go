package model

import "time"

// Config is the full scribedesk configuration
type Config struct {
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	HTTP          HTTPConfig          `yaml:"http" mapstructure:"http"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Concurrency   ConcurrencyConfig   `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting  RateLimitConfig     `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Output        OutputConfig        `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects the model that drafts articles
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, cohere
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// TranscriptionConfig selects the speech-to-text service
type TranscriptionConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // openai (whisper)
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Language string `yaml:"language,omitempty" mapstructure:"language"` // ISO-639-1 hint, empty = detect
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"`             // seconds
}

// HTTPConfig applies to every outbound API client
type HTTPConfig struct {
	MaxAudioBytes int64  `yaml:"max_audio_bytes" mapstructure:"max_audio_bytes"`
	HTTPProxy     string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls transcript and response caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Redis     RedisConfig   `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig is used when the cache backend is redis
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig caps requests per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Per-provider overrides keyed by drafter name (openai, anthropic, ollama, cohere)
	// or "transcribe:<name>" for the transcriber, e.g. "transcribe:openai"
	Providers map[string]ProviderRate `yaml:"providers,omitempty" mapstructure:"providers"`
}

// ProviderRate overrides the default rate for one provider
type ProviderRate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ServerConfig is used by the serve command
type ServerConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	RequestTimeout int    `yaml:"request_timeout" mapstructure:"request_timeout"` // seconds
	MaxUploadBytes int64  `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     60,
			MaxTokens:   2000,
			Temperature: 0.7,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Timeout:  120,
		},
		HTTP: HTTPConfig{
			MaxAudioBytes: 25 << 20, // Whisper upload limit
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "layered",
			Dir:       ".scribedesk-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         3,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 180,
			MaxUploadBytes: 25 << 20,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
