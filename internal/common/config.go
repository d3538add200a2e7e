package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	Search      SearchConfig   `toml:"search"`
	LLM         LLMConfig      `toml:"llm"`
	Research    ResearchConfig `toml:"research"`
	Sessions    SessionsConfig `toml:"sessions"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                             // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// SearchConfig selects and configures the web search backend.
// Engine is the variant discriminant; both variants expose the same
// search contract.
type SearchConfig struct {
	Engine           string `toml:"engine" validate:"oneof=firecrawl tavily"` // "firecrawl" or "tavily"
	FirecrawlKey     string `toml:"firecrawl_key"`
	FirecrawlBaseURL string `toml:"firecrawl_base_url"` // Optional self-hosted endpoint
	TavilyKey        string `toml:"tavily_key"`
	Limit            int    `toml:"limit" validate:"min=1,max=20"` // Hits requested per search
	Timeout          string `toml:"timeout"`                       // HTTP timeout, e.g. "15s"
}

// LLMConfig configures the chat completion providers.
// ReasoningModel drives question generation and report writing,
// TranslationModel drives query language normalization.
type LLMConfig struct {
	DefaultProvider  string `toml:"default_provider" validate:"oneof=openai claude"`
	OpenAIAPIKey     string `toml:"openai_api_key"`
	AnthropicAPIKey  string `toml:"anthropic_api_key"`
	ReasoningModel   string `toml:"reasoning_model"`
	TranslationModel string `toml:"translation_model"`
	MaxTokens        int    `toml:"max_tokens"`
	Timeout          string `toml:"timeout"`    // Per-call timeout, e.g. "2m"
	RateLimit        string `toml:"rate_limit"` // Minimum spacing between calls, e.g. "1s"
}

// ResearchConfig configures the deep-research engine.
type ResearchConfig struct {
	GoogleAPIKey   string `toml:"google_api_key"`
	Model          string `toml:"model"`
	Breadth        int    `toml:"breadth" validate:"min=1,max=10"` // Follow-up queries per level
	Depth          int    `toml:"depth" validate:"min=1,max=5"`    // Follow-up levels
	ReportLanguage string `toml:"report_language"`                 // Default report language
}

// SessionsConfig controls session retention.
type SessionsConfig struct {
	RetentionDays   int    `toml:"retention_days" validate:"min=1"`
	CleanupSchedule string `toml:"cleanup_schedule"` // Cron schedule format
}

// NewDefaultConfig returns the baseline configuration before file, env, and
// flag overrides are applied
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/rogare",
				ResetOnStartup: false,
			},
		},
		Search: SearchConfig{
			Engine:  "tavily",
			Limit:   5,
			Timeout: "15s",
		},
		LLM: LLMConfig{
			DefaultProvider:  "openai",
			ReasoningModel:   "o3-mini",
			TranslationModel: "gpt-4o-mini",
			MaxTokens:        8192,
			Timeout:          "2m",
			RateLimit:        "1s",
		},
		Research: ResearchConfig{
			Model:          "gemini-2.0-flash",
			Breadth:        4,
			Depth:          2,
			ReportLanguage: "en",
		},
		Sessions: SessionsConfig{
			RetentionDays:   7,
			CleanupSchedule: "0 3 * * *", // Daily at 03:00
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier files; environment variables
// override all files. CLI flags are applied separately via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct-level validation rules
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// ROGARE_-prefixed variables take precedence over the bare provider
// variables (FIRECRAWL_KEY, TAVILY_KEY, REASONING_MODEL, ...).
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: ROGARE_ENV, fallback: GO_ENV)
	if env := os.Getenv("ROGARE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("ROGARE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ROGARE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("ROGARE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ROGARE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("ROGARE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Search configuration
	if engine := os.Getenv("ROGARE_SEARCH_ENGINE"); engine != "" {
		config.Search.Engine = strings.ToLower(engine)
	}
	if key := envFirst("ROGARE_FIRECRAWL_KEY", "FIRECRAWL_KEY"); key != "" {
		config.Search.FirecrawlKey = key
	}
	if baseURL := envFirst("ROGARE_FIRECRAWL_BASE_URL", "FIRECRAWL_BASE_URL"); baseURL != "" {
		config.Search.FirecrawlBaseURL = baseURL
	}
	if key := envFirst("ROGARE_TAVILY_KEY", "TAVILY_KEY"); key != "" {
		config.Search.TavilyKey = key
	}
	if limit := os.Getenv("ROGARE_SEARCH_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Search.Limit = l
		}
	}
	if timeout := os.Getenv("ROGARE_SEARCH_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Search.Timeout = timeout
		}
	}

	// LLM configuration
	if key := envFirst("ROGARE_OPENAI_API_KEY", "OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAIAPIKey = key
	}
	if key := envFirst("ROGARE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}
	if model := envFirst("ROGARE_REASONING_MODEL", "REASONING_MODEL"); model != "" {
		config.LLM.ReasoningModel = model
	}
	if model := envFirst("ROGARE_TRANSLATION_MODEL", "TRANSLATION_MODEL"); model != "" {
		config.LLM.TranslationModel = model
	}
	if provider := os.Getenv("ROGARE_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = strings.ToLower(provider)
	}
	if timeout := os.Getenv("ROGARE_LLM_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.LLM.Timeout = timeout
		}
	}

	// Research configuration
	if key := envFirst("ROGARE_GEMINI_API_KEY", "GEMINI_API_KEY"); key != "" {
		config.Research.GoogleAPIKey = key
	}
	if model := os.Getenv("ROGARE_RESEARCH_MODEL"); model != "" {
		config.Research.Model = model
	}
	if breadth := os.Getenv("ROGARE_RESEARCH_BREADTH"); breadth != "" {
		if b, err := strconv.Atoi(breadth); err == nil {
			config.Research.Breadth = b
		}
	}
	if depth := os.Getenv("ROGARE_RESEARCH_DEPTH"); depth != "" {
		if d, err := strconv.Atoi(depth); err == nil {
			config.Research.Depth = d
		}
	}
	if lang := os.Getenv("ROGARE_REPORT_LANGUAGE"); lang != "" {
		config.Research.ReportLanguage = lang
	}

	// Session retention
	if days := os.Getenv("ROGARE_SESSION_RETENTION_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Sessions.RetentionDays = d
		}
	}
	if schedule := os.Getenv("ROGARE_SESSION_CLEANUP_SCHEDULE"); schedule != "" {
		config.Sessions.CleanupSchedule = schedule
	}
}

// envFirst returns the value of the first set, non-empty variable
func envFirst(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// SearchTimeout returns the parsed search HTTP timeout with a safe fallback
func (c *SearchConfig) SearchTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}

// CallTimeout returns the parsed per-call LLM timeout with a safe fallback
func (c *LLMConfig) CallTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 2 * time.Minute
}

// CallSpacing returns the parsed minimum spacing between LLM calls
func (c *LLMConfig) CallSpacing() time.Duration {
	if d, err := time.ParseDuration(c.RateLimit); err == nil && d > 0 {
		return d
	}
	return time.Second
}
