package topics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/essaylens/internal/logging"
)

// Scorer is the cross-encoder similarity service.
type Scorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Decision is the outcome of the topic gate for one lecture/essay pair.
type Decision struct {
	LectureTopics []string `json:"lecture_topics"`
	EssayTopics   []string `json:"essay_topics"`
	Passed        bool     `json:"passed"`
	// Similarity is the cross-encoder score, or 0 when the gate did not pass.
	Similarity float64 `json:"similarity"`
}

// Gate extracts topics from both texts and, only when they overlap, asks
// the scorer for the similarity of the raw texts.
type Gate struct {
	extractor *Extractor
	scorer    Scorer
}

// NewGate creates a Gate.
func NewGate(x *Extractor, s Scorer) *Gate {
	return &Gate{extractor: x, scorer: s}
}

// Evaluate runs the gate. If either text is blank nothing is extracted or
// scored and the similarity is 0.
func (g *Gate) Evaluate(ctx context.Context, lecture, essay string) (*Decision, error) {
	d := &Decision{LectureTopics: []string{}, EssayTopics: []string{}}
	if strings.TrimSpace(lecture) == "" || strings.TrimSpace(essay) == "" {
		return d, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		topics, err := g.extractor.Extract(egCtx, lecture)
		if err != nil {
			return fmt.Errorf("lecture topics: %w", err)
		}
		d.LectureTopics = topics
		return nil
	})
	eg.Go(func() error {
		topics, err := g.extractor.Extract(egCtx, essay)
		if err != nil {
			return fmt.Errorf("essay topics: %w", err)
		}
		d.EssayTopics = topics
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return g.decide(ctx, d, lecture, essay)
}

// Decide applies the gate to topics that were already extracted.
func (g *Gate) Decide(ctx context.Context, lectureTopics, essayTopics []string, lecture, essay string) (*Decision, error) {
	d := &Decision{LectureTopics: lectureTopics, EssayTopics: essayTopics}
	return g.decide(ctx, d, lecture, essay)
}

func (g *Gate) decide(ctx context.Context, d *Decision, lecture, essay string) (*Decision, error) {
	d.Passed = Overlap(d.LectureTopics, d.EssayTopics)
	if !d.Passed {
		return d, nil
	}
	score, err := g.scorer.Score(logging.WithPurpose(ctx, "similarity"), lecture, essay)
	if err != nil {
		return nil, fmt.Errorf("cross-encoder similarity: %w", err)
	}
	d.Similarity = score
	return d, nil
}
