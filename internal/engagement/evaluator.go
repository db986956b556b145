package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/grammar"
	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/stats"
	"github.com/abhisek/essaylens/internal/stylometry"
	"github.com/abhisek/essaylens/internal/topics"
	"github.com/abhisek/essaylens/internal/typing"
)

// similarityPlaces is the precision of the similarity in the report.
const similarityPlaces = 3

// Config tunes an Evaluator.
type Config struct {
	Typing typing.Options
	Policy Policy
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{Typing: typing.DefaultOptions(), Policy: DefaultPolicy()}
}

// Evaluator runs the full pipeline for one submission at a time. It holds
// only read-only handles and is safe for concurrent use.
type Evaluator struct {
	stylometry *stylometry.Analyzer
	grammar    *grammar.Adapter
	gate       *topics.Gate
	classifier classify.StyleClassifier
	cfg        Config
	logger     *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger discards.
func NewEvaluator(
	analyzer *stylometry.Analyzer,
	grammarAdapter *grammar.Adapter,
	gate *topics.Gate,
	classifier classify.StyleClassifier,
	cfg Config,
	logger *slog.Logger,
) *Evaluator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Evaluator{
		stylometry: analyzer,
		grammar:    grammarAdapter,
		gate:       gate,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Evaluate produces the report for sub. The timing, stylometry, grammar and
// topic passes run concurrently; the first collaborator failure cancels the
// others and is returned, with no partial report.
func (e *Evaluator) Evaluate(ctx context.Context, sub *Submission) (*Evaluation, error) {
	if sub == nil || sub.Log == nil {
		return nil, &errs.ValidationError{Field: "/typing_data", Err: fmt.Errorf("missing property 'typing_data'")}
	}
	if err := sub.Log.Check(); err != nil {
		return nil, err
	}

	start := time.Now()
	text := sub.Log.Text()

	var (
		metrics  typing.Metrics
		style    *stylometry.Report
		gram     *grammar.Report
		decision *topics.Decision
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		metrics = typing.Extract(sub.Log, e.cfg.Typing)
		return nil
	})
	eg.Go(func() error {
		r, err := e.stylometry.Analyze(egCtx, text)
		if err != nil {
			return fmt.Errorf("stylometry: %w", err)
		}
		style = r
		return nil
	})
	eg.Go(func() error {
		r, err := e.grammar.Check(egCtx, text)
		if err != nil {
			return fmt.Errorf("grammar: %w", err)
		}
		gram = r
		return nil
	})
	eg.Go(func() error {
		d, err := e.gate.Evaluate(egCtx, sub.LectureText, sub.EssayText)
		if err != nil {
			return fmt.Errorf("topic gate: %w", err)
		}
		decision = d
		return nil
	})
	if err := eg.Wait(); err != nil {
		e.logger.WarnContext(ctx, "evaluation failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	features := classify.BuildVector(metrics, *gram, *style)
	label, err := e.classifier.Classify(logging.WithPurpose(ctx, "classify"), features)
	if err != nil {
		e.logger.WarnContext(ctx, "evaluation failed", "error", err, "elapsed", time.Since(start))
		return nil, fmt.Errorf("classify typing style: %w", err)
	}

	score := e.cfg.Policy.Decide(label, decision.Similarity)
	ev := &Evaluation{
		Report: Report{
			TypingMetrics:    metrics,
			GrammarReport:    *gram,
			StylometryReport: *style,
			EngagementScore:  score,
			TypingStyle:      label,
			SimilarityScore:  stats.Round(decision.Similarity, similarityPlaces),
		},
		Features:   features,
		Topics:     *decision,
		Similarity: decision.Similarity,
	}

	e.logger.InfoContext(ctx, "evaluation finished",
		"engagement_score", int(score),
		"typing_style", label,
		"similarity_score", ev.Report.SimilarityScore,
		"topic_gate_passed", decision.Passed,
		"total_words", metrics.TotalWords,
		"grammar_issues", gram.TotalIssues,
		"elapsed", time.Since(start),
	)
	return ev, nil
}
