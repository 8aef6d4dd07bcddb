// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/flemzord/relaybot/internal/provider"
)

// MockGenerator is a configurable test double for provider.Generator.
// GenerateFunc must be set. All methods are safe for concurrent use.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req provider.Request) (provider.Response, error)

	mu    sync.Mutex
	calls []provider.Request
}

// Generate records the request and delegates to GenerateFunc.
func (m *MockGenerator) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}

// Calls returns a copy of every request received so far.
func (m *MockGenerator) Calls() []provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.Request(nil), m.calls...)
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ByKey returns a generator whose behavior is chosen by API key. Each key
// maps to a queue of results consumed in order; the last result repeats.
// Unknown keys fail with provider.ErrTransient.
func ByKey(script map[string][]Result) *MockGenerator {
	var mu sync.Mutex
	pos := make(map[string]int)
	return &MockGenerator{
		GenerateFunc: func(_ context.Context, req provider.Request) (provider.Response, error) {
			mu.Lock()
			defer mu.Unlock()
			results, ok := script[req.APIKey]
			if !ok || len(results) == 0 {
				return provider.Response{}, provider.ErrTransient
			}
			i := pos[req.APIKey]
			if i < len(results)-1 {
				pos[req.APIKey] = i + 1
			}
			r := results[i]
			return provider.Response{Text: r.Text}, r.Err
		},
	}
}

// Result is one scripted generator outcome.
type Result struct {
	Text string
	Err  error
}

// OK is a successful scripted result.
func OK(text string) Result { return Result{Text: text} }

// Fail is a failed scripted result.
func Fail(err error) Result { return Result{Err: err} }

// Interface guard.
var _ provider.Generator = (*MockGenerator)(nil)
