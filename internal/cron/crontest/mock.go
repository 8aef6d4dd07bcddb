// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flemzord/relaybot/internal/cron"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// MockSessionStore is a test double for cron.SessionStore. Without
// EvictFunc it evicts every Idle chat that busy does not claim.
type MockSessionStore struct {
	EvictFunc func(maxIdle time.Duration) int
	Idle      []string
	Remaining int

	EvictCalls atomic.Int32

	mu   sync.Mutex
	kept []string
}

// Compile-time interface check.
var _ cron.SessionStore = (*MockSessionStore)(nil)

// EvictIdleExcept implements cron.SessionStore.
func (m *MockSessionStore) EvictIdleExcept(maxIdle time.Duration, busy func(string) bool) int {
	m.EvictCalls.Add(1)
	if m.EvictFunc != nil {
		return m.EvictFunc(maxIdle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for _, id := range m.Idle {
		if busy != nil && busy(id) {
			m.kept = append(m.kept, id)
			continue
		}
		evicted++
	}
	return evicted
}

// Len implements cron.SessionStore.
func (m *MockSessionStore) Len() int { return m.Remaining }

// Kept returns the idle chats spared because they were busy.
func (m *MockSessionStore) Kept() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.kept...)
}
