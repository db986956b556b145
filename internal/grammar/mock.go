package grammar

import (
	"context"
	"sync"
)

// MockChecker returns canned matches (or Err) and records checked texts.
type MockChecker struct {
	Matches []Match
	Err     error

	mu    sync.Mutex
	Texts []string
}

// Check records text and returns the canned Matches or Err.
func (m *MockChecker) Check(_ context.Context, text string) ([]Match, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches, nil
}

// CallCount returns the number of Check calls made.
func (m *MockChecker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}

// Noop is a Checker that never reports issues, for deployments without a
// grammar server.
type Noop struct{}

// Check reports no issues.
func (Noop) Check(context.Context, string) ([]Match, error) { return nil, nil }
