// Package llm is the narrow LLM surface essaylens needs: a single-turn,
// schema-constrained Generate call used by the similarity judge and the
// lecture Q&A answerer, behind Anthropic, OpenAI and Gemini backends.
package llm

import (
	"context"
	"encoding/json"
)

// DefaultMaxTokens is used when a Request leaves MaxTokens at zero.
const DefaultMaxTokens = 1024

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Provider generates one response per request.
type Provider interface {
	// Generate sends req and returns the response. With a Schema set,
	// Content is JSON that has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model this provider is configured to use.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema constrains the output. Providers use their native structured
	// output support and validate the result locally as well.
	Schema *Schema

	// MaxTokens caps the response length; zero means DefaultMaxTokens.
	MaxTokens int

	// Temperature is always sent; zero asks for deterministic output,
	// which is what scoring wants.
	Temperature float64
}

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema for structured output. Name doubles as the
// OpenAI schema name and as the local compile cache key, so it must be
// unique per Definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the validated JSON object when the request carried a
	// Schema, otherwise the generated text encoded as a JSON string.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Text decodes Content produced without a Schema.
func (r *Response) Text() (string, error) {
	var s string
	err := json.Unmarshal(r.Content, &s)
	return s, err
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func usage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
