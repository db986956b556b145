package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultHashingDimensions is the vector size of a Hashing embedder built
// with zero dimensions.
const DefaultHashingDimensions = 256

// Hashing is an offline, deterministic bag-of-words embedder: each
// lowercased word and adjacent word pair is hashed into a signed bucket.
// It needs no model or network and is meant for air-gapped runs and tests,
// not for calibrated similarity.
type Hashing struct {
	dims int
}

// NewHashing returns a Hashing embedder with dims buckets.
func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &Hashing{dims: dims}
}

// Embed hashes the words and adjacent word pairs of each text into signed
// buckets. Vectors are not normalized.
func (h *Hashing) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *Hashing) Backend() string { return "hashing" }

func (h *Hashing) vector(text string) []float32 {
	v := make([]float32, h.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		h.add(v, w, 1)
		if i > 0 {
			h.add(v, words[i-1]+" "+w, 0.5)
		}
	}
	return v
}

func (h *Hashing) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}
