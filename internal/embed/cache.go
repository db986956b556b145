package embed

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of vectors WithCache keeps.
const DefaultCacheSize = 4096

// CachedEmbedder memoizes vectors per text. Lecture transcripts and topic
// candidates repeat across submissions, so most of a batch run is served
// from memory.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// WithCache wraps e with an LRU cache of size entries.
func WithCache(e Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: e, cache: c}, nil
}

// Embed answers cached texts from the LRU and embeds the rest in one
// batch.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing []string
		slots   = map[string][]int{}
	)
	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		if _, seen := slots[t]; !seen {
			missing = append(missing, t)
		}
		slots[t] = append(slots[t], i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := checkCount(len(missing), len(vecs)); err != nil {
		return nil, err
	}
	for j, t := range missing {
		c.cache.Add(t, vecs[j])
		for _, i := range slots[t] {
			out[i] = vecs[j]
		}
	}
	return out, nil
}

func (c *CachedEmbedder) Backend() string { return BackendName(c.inner) }

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int { return c.cache.Len() }
