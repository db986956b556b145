package classify

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

// LoggingClassifier is a decorator that records every classification in
// the service call journal.
type LoggingClassifier struct {
	inner  StyleClassifier
	repo   store.CallRepo
	logger *slog.Logger
}

// WithLogging wraps a StyleClassifier with call journaling. repo may be nil.
func WithLogging(c StyleClassifier, repo store.CallRepo, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{inner: c, repo: repo, logger: logger}
}

// Classify runs the wrapped classifier and journals the call.
func (l *LoggingClassifier) Classify(ctx context.Context, v Vector) (string, error) {
	start := time.Now()
	label, err := l.inner.Classify(ctx, v)

	call := store.ServiceCall{
		Service:   "classifier",
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

	return label, err
}

func (l *LoggingClassifier) Backend() string { return BackendName(l.inner) }
