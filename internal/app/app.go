// Package app wires configuration into the long-lived service handles the
// commands share: embedder, cross-encoder, grammar checker, classifier,
// LLM and the evaluator built on top of them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/config"
	"github.com/abhisek/essaylens/internal/embed"
	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/grammar"
	"github.com/abhisek/essaylens/internal/llm"
	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/qa"
	"github.com/abhisek/essaylens/internal/similarity"
	"github.com/abhisek/essaylens/internal/store"
	"github.com/abhisek/essaylens/internal/stylometry"
	"github.com/abhisek/essaylens/internal/topics"
)

// Services holds handles built once per process. All fields are safe for
// concurrent use once New returns.
type Services struct {
	Config     config.Config
	Logger     *slog.Logger
	Calls      store.CallRepo // nil when journaling is off
	Embedder   embed.Embedder
	Scorer     similarity.Scorer
	Grammar    grammar.Checker
	Classifier classify.StyleClassifier
	Evaluator  *engagement.Evaluator

	httpClient *http.Client

	llmOnce sync.Once
	llm     llm.Provider
	llmErr  error
}

// New builds every handle the evaluation pipeline needs. calls may be nil.
// The LLM is only built here when the similarity backend needs it;
// otherwise it is deferred to the first LLM call.
func New(ctx context.Context, cfg config.Config, calls store.CallRepo, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Services{
		Config:     cfg,
		Logger:     logger,
		Calls:      calls,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}

	var err error
	if s.Embedder, err = s.buildEmbedder(ctx); err != nil {
		return nil, fmt.Errorf("embedding backend: %w", err)
	}
	if s.Scorer, err = s.buildScorer(ctx); err != nil {
		return nil, fmt.Errorf("similarity backend: %w", err)
	}
	if s.Grammar, err = s.buildGrammar(); err != nil {
		return nil, fmt.Errorf("grammar backend: %w", err)
	}
	if s.Classifier, err = s.buildClassifier(); err != nil {
		return nil, fmt.Errorf("classifier backend: %w", err)
	}

	p := cfg.Pipeline
	analyzer := stylometry.NewAnalyzer(s.Embedder,
		stylometry.WithMinSentences(p.MinDriftSentences),
		stylometry.WithChunkSize(p.ChunkSize),
	)
	gate := topics.NewGate(topics.NewExtractor(s.Embedder, p.TopicCount), s.Scorer)
	s.Evaluator = engagement.NewEvaluator(
		analyzer,
		grammar.NewAdapter(s.Grammar),
		gate,
		s.Classifier,
		cfg.Engagement(),
		logger,
	)

	logger.Debug("services ready",
		"embedding", embed.BackendName(s.Embedder),
		"similarity", similarity.BackendName(s.Scorer),
		"grammar", cfg.Grammar.Backend,
		"classifier", classify.BackendName(s.Classifier),
	)
	return s, nil
}

// LLM returns the configured provider, building it on first use. Later
// callers share the first result, including its error.
func (s *Services) LLM(ctx context.Context) (llm.Provider, error) {
	s.llmOnce.Do(func() {
		cfg := s.Config.LLMProvider()
		if err := cfg.Validate(); err != nil {
			s.llmErr = err
			return
		}
		s.llm, s.llmErr = llm.NewProvider(ctx, cfg, s.Calls, s.Logger)
	})
	return s.llm, s.llmErr
}

// Answerer returns a lecture Q&A answerer over the shared embedder and LLM.
func (s *Services) Answerer(ctx context.Context) (*qa.Answerer, error) {
	p, err := s.LLM(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return qa.NewAnswerer(s.Embedder, p, s.Config.Pipeline.QAThreshold), nil
}

func (s *Services) buildEmbedder(ctx context.Context) (embed.Embedder, error) {
	c := s.Config.Embedding
	var base embed.Embedder
	switch c.Backend {
	case "tei":
		base = embed.NewTEI(c.URL, s.httpClient)
	case "openai":
		e, err := embed.NewOpenAI(embed.OpenAIConfig{APIKey: c.APIKey, Model: c.Model, BaseURL: c.URL, Dimensions: c.Dimensions})
		if err != nil {
			return nil, err
		}
		base = e
	case "gemini":
		e, err := embed.NewGemini(ctx, embed.GeminiConfig{APIKey: c.APIKey, Model: c.Model, BaseURL: c.URL, Dimensions: c.Dimensions})
		if err != nil {
			return nil, err
		}
		base = e
	case "hashing":
		base = embed.NewHashing(c.Dimensions)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}

	// Cache hits never reach the journal.
	logged := embed.WithLogging(base, s.Calls, s.Logger)
	if c.CacheSize == 0 {
		return logged, nil
	}
	return embed.WithCache(logged, c.CacheSize)
}

func (s *Services) buildScorer(ctx context.Context) (similarity.Scorer, error) {
	c := s.Config.Similarity
	var base similarity.Scorer
	switch c.Backend {
	case "tei":
		base = similarity.NewTEI(c.URL, c.RawScores, s.httpClient)
	case "llm":
		p, err := s.LLM(ctx)
		if err != nil {
			return nil, err
		}
		base = similarity.NewJudge(p)
	case "lexical":
		base = similarity.Lexical{}
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	return similarity.WithLogging(base, s.Calls, s.Logger), nil
}

func (s *Services) buildGrammar() (grammar.Checker, error) {
	c := s.Config.Grammar
	switch c.Backend {
	case "languagetool":
		lt := grammar.NewLanguageTool(c.URL, c.Language, s.httpClient)
		return grammar.WithLogging(lt, lt.Backend(), s.Calls, s.Logger), nil
	case "none":
		return grammar.Noop{}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}

func (s *Services) buildClassifier() (classify.StyleClassifier, error) {
	c := s.Config.Classifier
	var base classify.StyleClassifier
	switch c.Backend {
	case "forest":
		path := c.BundlePath
		if path == "" {
			p, err := config.DefaultBundlePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		base = classify.NewForest(path)
	case "http":
		base = classify.NewRemote(c.URL, s.httpClient)
	case "constant":
		base = classify.Constant{Label: c.Label}
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	return classify.WithLogging(base, s.Calls, s.Logger), nil
}
