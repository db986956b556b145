package similarity

import (
	"context"
	"net/http"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/httpx"
)

// TEI scores pairs with a cross-encoder hosted by text-embeddings-inference
// (POST /rerank). With RawScores the model's logit is returned as-is;
// otherwise TEI applies a sigmoid.
type TEI struct {
	client    *httpx.Client
	baseURL   string
	rawScores bool
}

// NewTEI creates a TEI cross-encoder scorer. A nil hc uses httpx defaults.
func NewTEI(baseURL string, rawScores bool, hc *http.Client) *TEI {
	return &TEI{client: httpx.New("similarity", hc), baseURL: baseURL, rawScores: rawScores}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score reranks b against a as the query and returns its score.
func (t *TEI) Score(ctx context.Context, a, b string) (float64, error) {
	req := rerankRequest{Query: a, Texts: []string{b}, RawScores: t.rawScores, Truncate: true}
	var out []rerankResult
	if err := t.client.PostJSON(ctx, httpx.Join(t.baseURL, "/rerank"), "tei /rerank", req, &out); err != nil {
		return 0, err
	}
	for _, r := range out {
		if r.Index == 0 {
			return r.Score, nil
		}
	}
	return 0, errs.Malformed("similarity", "tei /rerank", "no score for text 0 in %d results", len(out))
}

func (t *TEI) Backend() string { return "tei" }
