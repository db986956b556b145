package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with call
// journaling. Failed requests are never retried. repo may be nil.
func NewProvider(ctx context.Context, cfg Config, repo store.CallRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
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

	if cfg.Timeout > 0 {
		base = &timeoutProvider{inner: base, timeout: cfg.Timeout}
	}
	return WithLogging(base, cfg.Provider, repo, logger), nil
}

// timeoutProvider bounds each Generate call.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }
