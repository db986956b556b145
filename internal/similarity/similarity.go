// Package similarity provides cross-encoder style text-pair scorers.
// Scores are not guaranteed to lie in [0,1]; decision thresholds must be
// calibrated against the backend in use.
package similarity

import "context"

// Scorer rates how semantically close two texts are.
type Scorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Named is implemented by scorers that can identify their backend for the
// call journal.
type Named interface {
	Backend() string
}

// BackendName returns s's backend name, or "custom".
func BackendName(s Scorer) string {
	if n, ok := s.(Named); ok {
		return n.Backend()
	}
	return "custom"
}
