package embed

import (
	"context"
	"sync"
)

// MockEmbedder is a deterministic Embedder for tests. Texts found in
// Vectors get that vector; everything else goes to Fallback (a Hashing
// embedder when nil). Err, when set, fails every call.
type MockEmbedder struct {
	Vectors  map[string][]float32
	Fallback Embedder
	Err      error

	mu    sync.Mutex
	Calls [][]string
}

// Embed records texts and returns Vectors entries, embedding unmapped
// texts with Fallback.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	fallback := m.Fallback
	if fallback == nil {
		fallback = NewHashing(32)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.Vectors[t]; ok {
			out[i] = v
			continue
		}
		vecs, err := fallback.Embed(ctx, []string{t})
		if err != nil {
			return nil, err
		}
		out[i] = vecs[0]
	}
	return out, nil
}

func (m *MockEmbedder) Backend() string { return "mock" }

// CallCount returns the number of Embed calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
