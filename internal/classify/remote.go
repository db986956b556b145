package classify

import (
	"context"
	"net/http"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/httpx"
)

// Remote calls a classifier served over HTTP. The endpoint receives
// {"features": [...22], "feature_names": [...22]} and answers
// {"label": "..."}.
type Remote struct {
	client   *httpx.Client
	endpoint string
}

// NewRemote creates a Remote classifier. A nil hc uses httpx defaults.
func NewRemote(endpoint string, hc *http.Client) *Remote {
	return &Remote{client: httpx.New("classifier", hc), endpoint: endpoint}
}

type remoteRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
}

type remoteResponse struct {
	Label string `json:"label"`
}

// Classify posts the named feature vector to the endpoint. An empty label
// in the reply is a malformed response.
func (r *Remote) Classify(ctx context.Context, v Vector) (string, error) {
	req := remoteRequest{Features: v[:], FeatureNames: FeatureNames[:]}
	var out remoteResponse
	if err := r.client.PostJSON(ctx, r.endpoint, "remote", req, &out); err != nil {
		return "", err
	}
	if out.Label == "" {
		return "", errs.Malformed("classifier", "remote", "response has no label")
	}
	return out.Label, nil
}

func (r *Remote) Backend() string { return "http" }

// Constant always answers Label. It stands in for a trained model in dry
// runs and tests.
type Constant struct {
	Label string
	Err   error
}

// Classify returns Label, or Err when set.
func (c Constant) Classify(context.Context, Vector) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	return c.Label, nil
}

func (Constant) Backend() string { return "constant" }
