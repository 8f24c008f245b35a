package llm

import (
	"context"
	"fmt"

	"medboard_backend/internal/config"

	"go.uber.org/zap"
)

// NewProvider builds the configured provider wrapped as
// caller -> timeout -> retry -> observation -> backend.
func NewProvider(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)

	switch cfg.Provider {
	case "azure_openai", "azure":
		base, err = NewAzureOpenAIProvider(cfg.Azure)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	observed := WithObservation(base, cfg.Provider, log)
	retried := WithRetry(observed, RetryConfigFrom(cfg.Retry))
	return WithTimeout(retried, cfg.Timeout()), nil
}

// Unavailable is used in place of a provider that failed to initialise so the
// service can still start; every call reports ErrProviderUnavailable and
// callers fall through to their non-LLM paths.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.Reason}
}

func (u Unavailable) ModelID() string {
	return "unavailable"
}
