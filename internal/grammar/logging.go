package grammar

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

// LoggingChecker is a decorator that records every grammar request in the
// service call journal.
type LoggingChecker struct {
	inner   Checker
	backend string
	repo    store.CallRepo
	logger  *slog.Logger
}

// WithLogging wraps a Checker with call journaling. repo may be nil.
func WithLogging(c Checker, backend string, repo store.CallRepo, logger *slog.Logger) *LoggingChecker {
	return &LoggingChecker{inner: c, backend: backend, repo: repo, logger: logger}
}

// Check runs the wrapped checker and journals the call, failed or not.
func (l *LoggingChecker) Check(ctx context.Context, text string) ([]Match, error) {
	start := time.Now()
	matches, err := l.inner.Check(ctx, text)

	call := store.ServiceCall{
		Service:   "grammar",
		Backend:   l.backend,
		Purpose:   logging.PurposeFrom(ctx),
		Items:     len(matches),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		call.ErrorMessage = err.Error()
	}
	store.RecordCall(ctx, l.repo, l.logger, call)

	return matches, err
}
