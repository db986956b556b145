package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tei", cfg.Embedding.Backend)
	assert.Equal(t, 5.0, cfg.Pipeline.BurstThreshold)
	assert.Equal(t, 0.6, cfg.Pipeline.HighThreshold)
	assert.Equal(t, 0.4, cfg.Pipeline.ModerateThreshold)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
http_timeout = "10s"

[embedding]
backend = "hashing"
dimensions = 64

[classifier]
backend = "constant"
label = "thoughtful"

[pipeline]
burst_threshold = 3.5
high_threshold = 0.7

[llm]
provider = "openai"
model = "gpt-4.1-mini"
timeout = "5s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hashing", cfg.Embedding.Backend)
	assert.Equal(t, 64, cfg.Embedding.Dimensions)
	assert.Equal(t, 1024, cfg.Embedding.CacheSize, "untouched keys keep defaults")
	assert.Equal(t, "constant", cfg.Classifier.Backend)
	assert.Equal(t, 3.5, cfg.Pipeline.BurstThreshold)
	assert.Equal(t, 0.7, cfg.Pipeline.HighThreshold)
	assert.Equal(t, 0.4, cfg.Pipeline.ModerateThreshold)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)

	ec := cfg.Engagement()
	assert.Equal(t, 3.5, ec.Typing.BurstThreshold)
	assert.Equal(t, 2.0, ec.Typing.LongPause)
	assert.Equal(t, 0.7, ec.Policy.High)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[grammar]
backend = "none"
langauge = "en-GB"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grammar.langauge")
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "[embedding\nbackend = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ESSAYLENS_EMBEDDING_BACKEND", "openai")
	t.Setenv("ESSAYLENS_GRAMMAR_URL", "http://lt:8010")
	t.Setenv("ESSAYLENS_LOG_LEVEL", "debug")
	t.Setenv("ESSAYLENS_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("ESSAYLENS_OPENAI_API_KEY", "sk-essaylens")
	t.Setenv("OPENAI_API_KEY", "sk-generic")
	t.Setenv("ESSAYLENS_EMBEDDING_API_KEY", "")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "openai", cfg.Embedding.Backend)
	assert.Equal(t, "http://lt:8010", cfg.Grammar.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-ant", cfg.LLM.AnthropicAPIKey, "falls back to the provider variable")
	assert.Equal(t, "sk-essaylens", cfg.LLM.OpenAIAPIKey, "ESSAYLENS_ wins over the provider variable")
	assert.Equal(t, "sk-generic", cfg.Embedding.APIKey, "openai embeddings discover OPENAI_API_KEY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown embedding", func(c *Config) { c.Embedding.Backend = "word2vec" }, `unknown embedding backend "word2vec"`},
		{"openai without key", func(c *Config) { c.Embedding.Backend = "openai" }, "embedding.api_key is required"},
		{"tei without url", func(c *Config) { c.Similarity.URL = "" }, "similarity.url is required"},
		{"llm similarity without key", func(c *Config) { c.Similarity.Backend = "llm" }, "similarity backend llm"},
		{"grammar", func(c *Config) { c.Grammar.Backend = "grammarly" }, "unknown grammar backend"},
		{"http classifier", func(c *Config) { c.Classifier.Backend = "http" }, "classifier.url is required"},
		{"constant classifier", func(c *Config) { c.Classifier.Backend = "constant" }, "classifier.label is required"},
		{"drift sentences", func(c *Config) { c.Pipeline.MinDriftSentences = 1 }, "min_drift_sentences"},
		{"thresholds", func(c *Config) { c.Pipeline.ModerateThreshold = 0.9 }, "exceeds high threshold"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateJoinsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grammar.Backend = "x"
	cfg.Classifier.Backend = "y"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown grammar backend")
	assert.Contains(t, err.Error(), "unknown classifier backend")
}

func TestLLMProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4.1-mini"
	cfg.LLM.BaseURL = "http://localhost:11434/v1"
	cfg.LLM.OpenAIAPIKey = "sk"

	lc := cfg.LLMProvider()
	require.NoError(t, lc.Validate())
	assert.Equal(t, "gpt-4.1-mini", lc.Model())
	assert.Equal(t, "http://localhost:11434/v1", lc.OpenAI.BaseURL)
	assert.Empty(t, lc.Anthropic.BaseURL)
	assert.Equal(t, 30*time.Second, lc.Timeout)

	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Model = ""
	assert.Equal(t, "claude-haiku", cfg.LLMProvider().Model(), "empty model keeps the provider default")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("ESSAYLENS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "essaylens", "config.toml"), p)

	t.Setenv("ESSAYLENS_CONFIG", "/etc/essaylens.toml")
	p, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/essaylens.toml", p)

	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	b, err := DefaultBundlePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/data", "essaylens", "classifier.json"), b)
}
