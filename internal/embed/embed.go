// Package embed provides sentence-embedding backends behind a single
// Embedder interface, plus the vector math the analyzers share.
package embed

import (
	"context"
	"fmt"
	"math"

	"github.com/abhisek/essaylens/internal/errs"
)

// Embedder turns texts into fixed-dimension vectors. Implementations must
// return exactly one vector per input, in input order, and be safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Named is implemented by embedders that can identify their backend for
// the call journal.
type Named interface {
	Backend() string
}

// BackendName returns e's backend name, or "custom".
func BackendName(e Embedder) string {
	if n, ok := e.(Named); ok {
		return n.Backend()
	}
	return "custom"
}

// One embeds a single text.
func One(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if err := CheckBatch("embed", 1, vecs); err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Epsilon guards normalization of zero-length vectors.
const Epsilon = 1e-10

// Normalize returns v scaled to unit L2 norm. A zero vector stays zero.
func Normalize(v []float32) []float64 {
	var ss float64
	for _, x := range v {
		ss += float64(x) * float64(x)
	}
	norm := math.Sqrt(ss)
	if norm < Epsilon {
		norm = Epsilon
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}

// Cosine returns the cosine similarity of a and b after normalizing both.
// Empty vectors and vectors of different length score 0; callers that
// get vectors from a backend run CheckBatch first.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := Normalize(a), Normalize(b)
	var dot float64
	for i := range na {
		dot += na[i] * nb[i]
	}
	return dot
}

// CheckBatch verifies an embedder's answer to a request for want texts:
// one vector per text, none empty, all of one dimension. Anything else is
// a malformed embedding result.
func CheckBatch(op string, want int, vecs [][]float32) error {
	if len(vecs) != want {
		return errs.Malformed("embedding", op, "got %d vectors for %d texts", len(vecs), want)
	}
	for i, v := range vecs {
		switch {
		case len(v) == 0:
			return errs.Malformed("embedding", op, "vector %d is empty", i)
		case len(v) != len(vecs[0]):
			return errs.Malformed("embedding", op, "vector %d has %d dimensions, vector 0 has %d", i, len(v), len(vecs[0]))
		}
	}
	return nil
}

// checkCount reports a backend answer that does not line up with the
// request.
func checkCount(want int, got int) error {
	if want != got {
		return fmt.Errorf("expected %d embeddings, got %d", want, got)
	}
	return nil
}
