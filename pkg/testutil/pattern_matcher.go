package testutil

import (
	"strings"
	"sync"
)

// MockPatternMatcher is a mock implementation of interfaces.Matcher for testing.
// It matches any line containing its token.
type MockPatternMatcher struct {
	mu             sync.Mutex
	token          string
	matchCallCount int
}

// NewMockPatternMatcher creates a new mock pattern matcher
func NewMockPatternMatcher(token string) *MockPatternMatcher {
	return &MockPatternMatcher{
		token: token,
	}
}

// MatchString implements the Matcher interface
func (m *MockPatternMatcher) MatchString(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchCallCount++
	return strings.Contains(text, m.token)
}

// GetMatchCallCount returns how many times MatchString was called
func (m *MockPatternMatcher) GetMatchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchCallCount
}
