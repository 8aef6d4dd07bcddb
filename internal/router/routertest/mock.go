// Package routertest provides mock implementations of router interfaces for testing.
package routertest

import (
	"context"
	"sync"

	"github.com/flemzord/relaybot/internal/router"
)

// MockCompleter records prompts and optionally delegates to CompleteFunc.
// With no CompleteFunc it answers Reply.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	Reply        string

	mu      sync.Mutex
	prompts []string
}

// Complete records the prompt and returns the scripted result.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return m.Reply, nil
}

// Prompts returns a copy of every prompt received so far.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Interface guard.
var _ router.Completer = (*MockCompleter)(nil)
