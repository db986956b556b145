package similarity

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

// LoggingScorer is a decorator that records every similarity request in
// the service call journal.
type LoggingScorer struct {
	inner  Scorer
	repo   store.CallRepo
	logger *slog.Logger
}

// WithLogging wraps a Scorer with call journaling. repo may be nil.
func WithLogging(s Scorer, repo store.CallRepo, logger *slog.Logger) *LoggingScorer {
	return &LoggingScorer{inner: s, repo: repo, logger: logger}
}

// Score runs the wrapped scorer and journals the call.
func (l *LoggingScorer) Score(ctx context.Context, a, b string) (float64, error) {
	start := time.Now()
	score, err := l.inner.Score(ctx, a, b)

	call := store.ServiceCall{
		Service:   "similarity",
		Backend:   BackendName(l.inner),
		Purpose:   logging.PurposeFrom(ctx),
		Items:     1,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		call.ErrorMessage = err.Error()
	}
	store.RecordCall(ctx, l.repo, l.logger, call)

	return score, err
}

func (l *LoggingScorer) Backend() string { return BackendName(l.inner) }
