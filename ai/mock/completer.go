package mock

import "context"

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via a function field.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a canned answer echoing the prompt.
	CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

	callCount int
}

// NewMockCompleter creates a mock completer with default canned behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a canned answer unless CompleteFunc is set.
func (m *MockCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, prompt)
	}

	return "mock answer: " + prompt, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
}
