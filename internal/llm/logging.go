package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

// LoggingProvider is a decorator that records every LLM request in the
// service call journal.
type LoggingProvider struct {
	inner    Provider
	provider string
	repo     store.CallRepo
	logger   *slog.Logger
}

// WithLogging wraps a Provider with call journaling. provider names the
// vendor ("anthropic", "openai", ...) for the journal; repo may be nil.
func WithLogging(p Provider, provider string, repo store.CallRepo, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{inner: p, provider: provider, repo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	call := store.ServiceCall{
		Service:   "llm",
		Backend:   l.provider + ":" + l.inner.ModelID(),
		Purpose:   logging.PurposeFrom(ctx),
		Items:     len(req.Messages),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		call.InputTokens = resp.Usage.InputTokens
		call.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			call.Backend = l.provider + ":" + resp.Model
		}
	}
	if err != nil {
		call.ErrorMessage = err.Error()
	}
	store.RecordCall(ctx, l.repo, l.logger, call)

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
