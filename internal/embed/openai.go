package embed

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/essaylens/internal/errs"
)

// OpenAIConfig configures the OpenAI embeddings backend.
type OpenAIConfig struct {
	APIKey     string
	Model      string // Default: "text-embedding-3-small"
	BaseURL    string // Optional. OpenAI-compatible servers.
	Dimensions int    // Optional. text-embedding-3 models only.
}

// OpenAI implements Embedder with the OpenAI embeddings API.
type OpenAI struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAI{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed sends texts as one batch request.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(o.model),
		Dimensions: o.dimensions,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if err := checkCount(len(texts), len(resp.Data)); err != nil {
		return nil, errs.Malformed("embedding", "openai", "%v", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, errs.Malformed("embedding", "openai", "embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (o *OpenAI) Backend() string { return "openai:" + o.model }

func mapOpenAIError(err error) error {
	se := &errs.ServiceError{Service: "embedding", Op: "openai", Err: err}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		se.StatusCode = apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		se.StatusCode = reqErr.HTTPStatusCode
	}
	return se
}
