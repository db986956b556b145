package llm

import (
	"context"
	"errors"
	"sync"
)

// MockResponse is one canned reply. Content is the raw text the "model"
// produced; it goes through the same validation as a real provider's.
type MockResponse struct {
	Content    []byte
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider replays canned responses in order and records requests.
// It backs the "mock" provider setting and tests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next response. An empty queue fails like an
// unreachable provider.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, providerError("mock", 0, errors.New("no canned responses left"))
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	stop := next.StopReason
	if stop == "" {
		stop = StopEnd
	}
	return finish("mock", req, string(next.Content), "mock", stop, next.Usage)
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
