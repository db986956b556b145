// Package config loads the essaylens configuration: built-in defaults,
// overlaid by a TOML file, overlaid by ESSAYLENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/llm"
	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/typing"
)

// Config is the full essaylens configuration.
type Config struct {
	Embedding   EmbeddingConfig  `toml:"embedding"`
	Similarity  SimilarityConfig `toml:"similarity"`
	Grammar     GrammarConfig    `toml:"grammar"`
	Classifier  ClassifierConfig `toml:"classifier"`
	LLM         LLMConfig        `toml:"llm"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Log         LogConfig        `toml:"log"`
	Store       StoreConfig      `toml:"store"`
	HTTPTimeout time.Duration    `toml:"http_timeout"`
}

// EmbeddingConfig selects the sentence embedder.
type EmbeddingConfig struct {
	Backend    string `toml:"backend"` // tei, openai, gemini, hashing
	Model      string `toml:"model"`
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
	CacheSize  int    `toml:"cache_size"` // 0 disables the cache
}

// SimilarityConfig selects the cross-encoder.
type SimilarityConfig struct {
	Backend   string `toml:"backend"` // tei, llm, lexical
	URL       string `toml:"url"`
	RawScores bool   `toml:"raw_scores"`
}

// GrammarConfig selects the grammar checker.
type GrammarConfig struct {
	Backend  string `toml:"backend"` // languagetool, none
	URL      string `toml:"url"`
	Language string `toml:"language"`
}

// ClassifierConfig selects the typing-style classifier.
type ClassifierConfig struct {
	Backend    string `toml:"backend"` // forest, http, constant
	BundlePath string `toml:"bundle_path"`
	URL        string `toml:"url"`
	Label      string `toml:"label"`
}

// LLMConfig configures the LLM used by the judge scorer and lecture Q&A.
type LLMConfig struct {
	Provider        string        `toml:"provider"` // anthropic, openai, gemini, mock
	Model           string        `toml:"model"`
	AnthropicAPIKey string        `toml:"anthropic_api_key"`
	OpenAIAPIKey    string        `toml:"openai_api_key"`
	GeminiAPIKey    string        `toml:"gemini_api_key"`
	BaseURL         string        `toml:"base_url"`
	Timeout         time.Duration `toml:"timeout"`
}

// PipelineConfig holds the evaluation thresholds.
type PipelineConfig struct {
	BurstThreshold    float64 `toml:"burst_threshold"`
	LongPauseSeconds  float64 `toml:"long_pause_seconds"`
	MinDriftSentences int     `toml:"min_drift_sentences"`
	ChunkSize         int     `toml:"chunk_size"`
	TopicCount        int     `toml:"topic_count"`
	HighThreshold     float64 `toml:"high_threshold"`
	ModerateThreshold float64 `toml:"moderate_threshold"`
	QAThreshold       float64 `toml:"qa_threshold"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StoreConfig locates the SQLite database. An empty path resolves to the
// XDG data directory.
type StoreConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config pointing at locally hosted services.
func DefaultConfig() Config {
	opts := typing.DefaultOptions()
	policy := engagement.DefaultPolicy()
	return Config{
		Embedding: EmbeddingConfig{
			Backend:   "tei",
			URL:       "http://localhost:8080",
			CacheSize: 1024,
		},
		Similarity: SimilarityConfig{
			Backend:   "tei",
			URL:       "http://localhost:8081",
			RawScores: true,
		},
		Grammar: GrammarConfig{
			Backend:  "languagetool",
			URL:      "http://localhost:8010",
			Language: "en-US",
		},
		Classifier: ClassifierConfig{
			Backend: "forest",
		},
		LLM: LLMConfig{
			Provider: "anthropic",
			Timeout:  30 * time.Second,
		},
		Pipeline: PipelineConfig{
			BurstThreshold:    opts.BurstThreshold,
			LongPauseSeconds:  opts.LongPause,
			MinDriftSentences: 4,
			ChunkSize:         2,
			TopicCount:        3,
			HighThreshold:     policy.High,
			ModerateThreshold: policy.Moderate,
			QAThreshold:       0.4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTPTimeout: 45 * time.Second,
	}
}

// DefaultPath resolves the config file path in priority order:
// 1. ESSAYLENS_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/essaylens/config.toml
// 3. ~/.config/essaylens/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv("ESSAYLENS_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "essaylens", "config.toml"), nil
}

// DefaultBundlePath is where the forest bundle is looked up when
// classifier.bundle_path is empty.
func DefaultBundlePath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "essaylens", "classifier.json"), nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// Load decodes the TOML file at path over DefaultConfig. A missing file is
// not an error. Keys the Config does not know are rejected so typos surface.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overlays ESSAYLENS_* environment variables, then fills any
// still-empty API keys from the providers' conventional variables.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		name string
		dst  *string
	}{
		{"ESSAYLENS_EMBEDDING_BACKEND", &c.Embedding.Backend},
		{"ESSAYLENS_EMBEDDING_MODEL", &c.Embedding.Model},
		{"ESSAYLENS_EMBEDDING_URL", &c.Embedding.URL},
		{"ESSAYLENS_EMBEDDING_API_KEY", &c.Embedding.APIKey},
		{"ESSAYLENS_SIMILARITY_BACKEND", &c.Similarity.Backend},
		{"ESSAYLENS_SIMILARITY_URL", &c.Similarity.URL},
		{"ESSAYLENS_GRAMMAR_BACKEND", &c.Grammar.Backend},
		{"ESSAYLENS_GRAMMAR_URL", &c.Grammar.URL},
		{"ESSAYLENS_CLASSIFIER_BACKEND", &c.Classifier.Backend},
		{"ESSAYLENS_CLASSIFIER_BUNDLE", &c.Classifier.BundlePath},
		{"ESSAYLENS_CLASSIFIER_URL", &c.Classifier.URL},
		{"ESSAYLENS_LLM_PROVIDER", &c.LLM.Provider},
		{"ESSAYLENS_LLM_MODEL", &c.LLM.Model},
		{"ESSAYLENS_LLM_BASE_URL", &c.LLM.BaseURL},
		{"ESSAYLENS_ANTHROPIC_API_KEY", &c.LLM.AnthropicAPIKey},
		{"ESSAYLENS_OPENAI_API_KEY", &c.LLM.OpenAIAPIKey},
		{"ESSAYLENS_GEMINI_API_KEY", &c.LLM.GeminiAPIKey},
		{"ESSAYLENS_LOG_LEVEL", &c.Log.Level},
		{"ESSAYLENS_LOG_FORMAT", &c.Log.Format},
		{"ESSAYLENS_DB", &c.Store.Path},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			*o.dst = v
		}
	}

	fallback(&c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	fallback(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	fallback(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	switch c.Embedding.Backend {
	case "openai":
		fallback(&c.Embedding.APIKey, "OPENAI_API_KEY")
	case "gemini":
		fallback(&c.Embedding.APIKey, "GEMINI_API_KEY")
	}
}

func fallback(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	switch c.Embedding.Backend {
	case "tei":
		if c.Embedding.URL == "" {
			add("embedding.url is required for the tei backend")
		}
	case "openai", "gemini":
		if c.Embedding.APIKey == "" {
			add("embedding.api_key is required for the %s backend", c.Embedding.Backend)
		}
	case "hashing":
	default:
		add("unknown embedding backend %q", c.Embedding.Backend)
	}
	if c.Embedding.CacheSize < 0 {
		add("embedding.cache_size must be >= 0")
	}

	switch c.Similarity.Backend {
	case "tei":
		if c.Similarity.URL == "" {
			add("similarity.url is required for the tei backend")
		}
	case "llm":
		if err := c.LLMProvider().Validate(); err != nil {
			add("similarity backend llm: %w", err)
		}
	case "lexical":
	default:
		add("unknown similarity backend %q", c.Similarity.Backend)
	}

	switch c.Grammar.Backend {
	case "languagetool":
		if c.Grammar.URL == "" {
			add("grammar.url is required for the languagetool backend")
		}
	case "none":
	default:
		add("unknown grammar backend %q", c.Grammar.Backend)
	}

	switch c.Classifier.Backend {
	case "forest":
	case "http":
		if c.Classifier.URL == "" {
			add("classifier.url is required for the http backend")
		}
	case "constant":
		if c.Classifier.Label == "" {
			add("classifier.label is required for the constant backend")
		}
	default:
		add("unknown classifier backend %q", c.Classifier.Backend)
	}

	p := c.Pipeline
	if p.BurstThreshold < 0 {
		add("pipeline.burst_threshold must be >= 0")
	}
	if p.LongPauseSeconds < 0 {
		add("pipeline.long_pause_seconds must be >= 0")
	}
	if p.MinDriftSentences < 2 {
		add("pipeline.min_drift_sentences must be >= 2")
	}
	if p.ChunkSize < 1 {
		add("pipeline.chunk_size must be >= 1")
	}
	if p.TopicCount < 1 {
		add("pipeline.topic_count must be >= 1")
	}
	if err := c.Policy().Validate(); err != nil {
		add("pipeline: %w", err)
	}
	if p.QAThreshold < -1 || p.QAThreshold > 1 {
		add("pipeline.qa_threshold must be within [-1, 1]")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		add("log.format: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		add("http_timeout must be positive")
	}
	return errors.Join(problems...)
}

// LLMProvider converts the [llm] section into an llm.Config. Model and
// BaseURL apply to the selected provider only.
func (c Config) LLMProvider() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Anthropic.APIKey = c.LLM.AnthropicAPIKey
	out.OpenAI.APIKey = c.LLM.OpenAIAPIKey
	out.Gemini.APIKey = c.LLM.GeminiAPIKey
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.Model != "" {
			out.Anthropic.Model = c.LLM.Model
		}
		out.Anthropic.BaseURL = c.LLM.BaseURL
	case "openai":
		if c.LLM.Model != "" {
			out.OpenAI.Model = c.LLM.Model
		}
		out.OpenAI.BaseURL = c.LLM.BaseURL
	case "gemini":
		if c.LLM.Model != "" {
			out.Gemini.Model = c.LLM.Model
		}
		out.Gemini.BaseURL = c.LLM.BaseURL
	}
	return out
}

// Policy returns the engagement thresholds.
func (c Config) Policy() engagement.Policy {
	return engagement.Policy{High: c.Pipeline.HighThreshold, Moderate: c.Pipeline.ModerateThreshold}
}

// Engagement returns the evaluator configuration.
func (c Config) Engagement() engagement.Config {
	return engagement.Config{
		Typing: typing.Options{
			BurstThreshold: c.Pipeline.BurstThreshold,
			LongPause:      c.Pipeline.LongPauseSeconds,
		},
		Policy: c.Policy(),
	}
}
