package embed

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/abhisek/essaylens/internal/errs"
)

// GeminiConfig configures the Gemini embeddings backend.
type GeminiConfig struct {
	APIKey     string
	Model      string // Default: "text-embedding-004"
	BaseURL    string // Optional. Test servers and proxies.
	Dimensions int    // Optional output dimensionality.
}

// Gemini implements Embedder with the Gemini EmbedContent API.
type Gemini struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewGemini creates a Gemini embedder.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	return &Gemini{client: client, model: model, dimensions: int32(cfg.Dimensions)}, nil
}

// Embed sends texts as one batch request.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	config := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if g.dimensions > 0 {
		config.OutputDimensionality = &g.dimensions
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	if err := checkCount(len(texts), len(resp.Embeddings)); err != nil {
		return nil, errs.Malformed("embedding", "gemini", "%v", err)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, errs.Malformed("embedding", "gemini", "embedding %d is empty", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

func (g *Gemini) Backend() string { return "gemini:" + g.model }

func mapGeminiError(err error) error {
	se := &errs.ServiceError{Service: "embedding", Op: "gemini", Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		se.StatusCode = apiErr.Code
	}
	return se
}
