package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STEPCHECK_LLM_PROVIDER", "openai")
	t.Setenv("STEPCHECK_OPENAI_API_KEY", "sk-test")
	t.Setenv("STEPCHECK_OPENAI_MODEL", "gpt-4o")
	t.Setenv("STEPCHECK_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI = %+v", cfg.OpenAI)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("unset values should keep defaults, got %q", cfg.Anthropic.Model)
	}
}

func TestConfigFromEnv_MalformedTimeout(t *testing.T) {
	t.Setenv("STEPCHECK_LLM_TIMEOUT", "soon")
	if got := ConfigFromEnv().Timeout; got != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", got)
	}
}

func TestResolve(t *testing.T) {
	for _, k := range []string{"STEPCHECK_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := Resolve(); ok {
		t.Fatal("expected no provider without any keys")
	}

	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := Resolve()
	if !ok || cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("discovered %+v, %v", cfg, ok)
	}

	t.Setenv("STEPCHECK_LLM_PROVIDER", "mock")
	cfg, ok = Resolve()
	if !ok || cfg.Provider != "mock" {
		t.Fatalf("explicit provider ignored: %+v", cfg)
	}
}

func TestConfig_ValidateNamesEnvVar(t *testing.T) {
	err := Config{Provider: "gemini"}.Validate()
	if err == nil || !strings.Contains(err.Error(), "STEPCHECK_GEMINI_API_KEY") {
		t.Fatalf("Validate() = %v, want mention of STEPCHECK_GEMINI_API_KEY", err)
	}
	if err := (Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k"}}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewProviderFromEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	t.Setenv("STEPCHECK_LLM_PROVIDER", "")
	if _, err := NewProviderFromEnv(context.Background(), nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	t.Setenv("STEPCHECK_LLM_PROVIDER", "anthropic")
	t.Setenv("STEPCHECK_ANTHROPIC_API_KEY", "")
	if _, err := NewProviderFromEnv(context.Background(), nil, nil); err == nil {
		t.Fatal("expected a validation error without an API key")
	}

	t.Setenv("STEPCHECK_LLM_PROVIDER", "mock")
	p, err := NewProviderFromEnv(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ProviderName(p) != "mock" {
		t.Fatalf("ProviderName = %q, want mock", ProviderName(p))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: "anthropic"}, true},
		{Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{Config{Provider: "openai"}, true},
		{Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{Config{Provider: "mock"}, false},
		{Config{Provider: "bedrock"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Provider, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig_Order(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-openai" {
		t.Fatalf("discovered %+v, %v", cfg, ok)
	}
	if cfg.Anthropic.APIKey != "" {
		t.Error("discovery should only fill the chosen provider's key")
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default", cfg.OpenAI.Model)
	}
}
