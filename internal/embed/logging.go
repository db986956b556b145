package embed

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

// LoggingEmbedder is a decorator that records every embedding request in
// the service call journal.
type LoggingEmbedder struct {
	inner  Embedder
	repo   store.CallRepo
	logger *slog.Logger
}

// WithLogging wraps an Embedder with call journaling. repo may be nil.
func WithLogging(e Embedder, repo store.CallRepo, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{inner: e, repo: repo, logger: logger}
}

// Embed runs the wrapped embedder and journals the call.
func (l *LoggingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := l.inner.Embed(ctx, texts)

	call := store.ServiceCall{
		Service:   "embedding",
		Backend:   BackendName(l.inner),
		Purpose:   logging.PurposeFrom(ctx),
		Items:     len(texts),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		call.ErrorMessage = err.Error()
	}
	store.RecordCall(ctx, l.repo, l.logger, call)

	return vecs, err
}

func (l *LoggingEmbedder) Backend() string { return BackendName(l.inner) }
