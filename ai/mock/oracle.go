package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/qamatch/ai"
)

// DefaultReply is what MockOracle answers when nothing else is configured.
const DefaultReply = "NOT_SIMILAR"

// MockOracle is a test double for ai.Oracle.
// It allows custom behavior injection via function fields.
type MockOracle struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns the configured reply.
	CompleteFunc func(ctx context.Context, messages []ai.Message) (string, error)

	mu        sync.Mutex
	reply     string
	callCount int
	last      []ai.Message
}

var _ ai.Oracle = (*MockOracle)(nil)

// NewMockOracle creates a mock oracle that answers DefaultReply.
// Note: Returns concrete type to allow test assertions.
func NewMockOracle() *MockOracle {
	return &MockOracle{reply: DefaultReply}
}

// WithReply sets a fixed reply and returns the mock for chaining.
func (m *MockOracle) WithReply(reply string) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
	return m
}

// Complete records the call and returns the configured reply.
func (m *MockOracle) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.last = slices.Clone(messages)
	fn := m.CompleteFunc
	reply := m.reply
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return reply, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockOracle) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent call.
func (m *MockOracle) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.last)
}

// Reset clears the call history, custom function and reply.
func (m *MockOracle) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.last = nil
	m.reply = DefaultReply
	m.CompleteFunc = nil
}
