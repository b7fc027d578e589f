package llm

import (
	"fmt"
	"os"
	"time"
)

// EnvPrefix prefixes every variable ConfigFromEnv reads.
const EnvPrefix = "STEPCHECK_"

type Config struct {
	// Provider is one of anthropic, openai, gemini, openrouter or mock.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries. Zero disables it.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible servers
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig picks small, fast models: a classification is a few dozen
// tokens of JSON.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// vendorSpec binds a provider name to the config fields that hold its key and
// model. The order of vendors is the discovery order.
type vendorSpec struct {
	name  string
	env   string // API key and model variables are <env>_API_KEY, <env>_MODEL
	key   func(*Config) *string
	model func(*Config) *string
}

var vendors = []vendorSpec{
	{"gemini", "GEMINI",
		func(c *Config) *string { return &c.Gemini.APIKey },
		func(c *Config) *string { return &c.Gemini.Model }},
	{"openai", "OPENAI",
		func(c *Config) *string { return &c.OpenAI.APIKey },
		func(c *Config) *string { return &c.OpenAI.Model }},
	{"anthropic", "ANTHROPIC",
		func(c *Config) *string { return &c.Anthropic.APIKey },
		func(c *Config) *string { return &c.Anthropic.Model }},
	{"openrouter", "OPENROUTER",
		func(c *Config) *string { return &c.OpenRouter.APIKey },
		func(c *Config) *string { return &c.OpenRouter.Model }},
}

func lookupVendor(name string) (vendorSpec, bool) {
	for _, b := range vendors {
		if b.name == name {
			return b, true
		}
	}
	return vendorSpec{}, false
}

func env(name string) string {
	return os.Getenv(EnvPrefix + name)
}

// ConfigFromEnv reads STEPCHECK_* variables over DefaultConfig. Unset or
// malformed values keep their defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	set := func(dst *string, name string) {
		if v := env(name); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "LLM_PROVIDER")
	for _, b := range vendors {
		set(b.key(&cfg), b.env+"_API_KEY")
		set(b.model(&cfg), b.env+"_MODEL")
	}
	set(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")

	if d, err := time.ParseDuration(env("LLM_TIMEOUT")); err == nil && d >= 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Configured reports whether STEPCHECK_LLM_PROVIDER is set.
func Configured() bool {
	return env("LLM_PROVIDER") != ""
}

// DiscoverConfig looks for the vendors' own API key variables
// (GEMINI_API_KEY and so on) and configures the first one found.
func DiscoverConfig() (Config, bool) {
	for _, b := range vendors {
		k := os.Getenv(b.env + "_API_KEY")
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = b.name
		*b.key(&cfg) = k
		return cfg, true
	}
	return Config{}, false
}

// Resolve prefers an explicit STEPCHECK_* configuration over discovery.
func Resolve() (Config, bool) {
	if Configured() {
		return ConfigFromEnv(), true
	}
	return DiscoverConfig()
}

// Validate checks that the selected provider exists and has a key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	b, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *b.key(&c) == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", EnvPrefix, b.env, c.Provider)
	}
	return nil
}
