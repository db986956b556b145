package stylometry

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/essaylens/internal/embed"
	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/stats"
)

const (
	// DefaultMinSentences is the fewest sentences a drift pass needs.
	DefaultMinSentences = 4
	// DefaultChunkSize is the number of sentences embedded together.
	DefaultChunkSize = 2

	noteTooFewSentences = "Too few sentences to detect drift."
	driftInterpretation = "High drift may indicate copying if style suddenly changes."
)

// Drift is the semantic drift signal over adjacent sentence chunks.
// Similarities is nil when the text was too short to chunk.
type Drift struct {
	DriftScore            float64   `json:"drift_score"`
	Similarities          []float64 `json:"semantic_similarities,omitempty"`
	AvgSemanticSimilarity float64   `json:"avg_semantic_similarity"`
	StdSemanticSimilarity float64   `json:"std_semantic_similarity"`
	Note                  string    `json:"note,omitempty"`
	Interpretation        string    `json:"interpretation,omitempty"`
}

// Report is the stylometry_report section of an analysis report.
type Report struct {
	LexicalStats
	Drift
}

// Analyzer runs the lexical and drift passes.
type Analyzer struct {
	embedder     embed.Embedder
	minSentences int
	chunkSize    int
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithMinSentences overrides DefaultMinSentences.
func WithMinSentences(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minSentences = n
		}
	}
}

// WithChunkSize overrides DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// NewAnalyzer creates an Analyzer that embeds chunks with e.
func NewAnalyzer(e embed.Embedder, opts ...Option) *Analyzer {
	a := &Analyzer{embedder: e, minSentences: DefaultMinSentences, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs both passes over text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Report, error) {
	d, err := a.Drift(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Report{LexicalStats: Lexical(text), Drift: *d}, nil
}

// Drift embeds consecutive sentence chunks and scores how far adjacent
// chunks move apart: 1 - mean(cosine). Texts below the sentence minimum
// score 0 with a note and make no embedding call.
func (a *Analyzer) Drift(ctx context.Context, text string) (*Drift, error) {
	sents := Sentences(text)
	if len(sents) < a.minSentences {
		return &Drift{Note: noteTooFewSentences}, nil
	}

	chunks := Chunk(sents, a.chunkSize)
	if len(chunks) < 2 {
		return &Drift{Note: noteTooFewSentences}, nil
	}
	vecs, err := a.embedder.Embed(logging.WithPurpose(ctx, "drift"), chunks)
	if err != nil {
		return nil, fmt.Errorf("embed sentence chunks: %w", err)
	}
	if err := embed.CheckBatch("drift", len(chunks), vecs); err != nil {
		return nil, err
	}

	sims := make([]float64, 0, len(vecs)-1)
	for i := 0; i+1 < len(vecs); i++ {
		sims = append(sims, embed.Cosine(vecs[i], vecs[i+1]))
	}

	mean := stats.Mean(sims)
	return &Drift{
		DriftScore:            1 - mean,
		Similarities:          sims,
		AvgSemanticSimilarity: mean,
		StdSemanticSimilarity: stats.StdDev(sims),
		Interpretation:        driftInterpretation,
	}, nil
}

// Chunk joins sentences into groups of size, separated by a space. The
// last group may be shorter.
func Chunk(sents []string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([]string, 0, (len(sents)+size-1)/size)
	for i := 0; i < len(sents); i += size {
		end := min(i+size, len(sents))
		chunks = append(chunks, strings.Join(sents[i:end], " "))
	}
	return chunks
}
