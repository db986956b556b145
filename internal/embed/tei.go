package embed

import (
	"context"
	"net/http"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/httpx"
)

// TEI implements Embedder against a text-embeddings-inference server
// (POST /embed), the usual way to host a sentence-transformers model.
type TEI struct {
	client  *httpx.Client
	baseURL string
}

// NewTEI creates a TEI embedder. A nil hc uses httpx defaults.
func NewTEI(baseURL string, hc *http.Client) *TEI {
	return &TEI{client: httpx.New("embedding", hc), baseURL: baseURL}
}

type teiEmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// Embed posts texts to /embed with truncation on.
func (t *TEI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out [][]float32
	req := teiEmbedRequest{Inputs: texts, Normalize: false, Truncate: true}
	if err := t.client.PostJSON(ctx, httpx.Join(t.baseURL, "/embed"), "tei /embed", req, &out); err != nil {
		return nil, err
	}
	if err := checkCount(len(texts), len(out)); err != nil {
		return nil, errs.Malformed("embedding", "tei /embed", "%v", err)
	}
	return out, nil
}

func (t *TEI) Backend() string { return "tei" }
