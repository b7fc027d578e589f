package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/stepcheck/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → logging → base. A nil eventRepo disables
// request logging; a nil logger discards log output.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo, logger)
	}
	p = WithRetry(p, cfg.Retry, logger)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}

	logger.Debug("llm provider ready",
		zap.String("provider", ProviderName(base)),
		zap.String("model", base.ModelID()),
	)
	return p, nil
}

// ErrNotConfigured is returned by NewProviderFromEnv when no provider is
// selected and no API key could be discovered.
var ErrNotConfigured = errors.New("no LLM provider configured")

// NewProviderFromEnv resolves configuration from the environment and
// creates the provider.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	cfg, ok := Resolve()
	if !ok {
		return nil, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, eventRepo, logger)
}
