package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/relaybot/internal/metrics"
)

const (
	// DefaultEvictionSchedule sweeps every five minutes.
	DefaultEvictionSchedule = "*/5 * * * *"

	// DefaultIdleTimeout is how long a chat may stay silent before its
	// session is dropped.
	DefaultIdleTimeout = time.Hour
)

// SessionStore is the subset of session.Store needed by the eviction job.
type SessionStore interface {
	EvictIdleExcept(maxIdle time.Duration, busy func(chatID string) bool) int
	Len() int
}

// ChatActivity reports chats a worker is answering or about to answer.
// *router.ChatLocks satisfies it.
type ChatActivity interface {
	Busy(chatID string) bool
}

// EvictionJob removes sessions that have been idle longer than MaxIdle.
type EvictionJob struct {
	Store        SessionStore
	Active       ChatActivity // optional
	MaxIdle      time.Duration
	ScheduleExpr string // empty = DefaultEvictionSchedule
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// Compile-time interface check.
var _ Job = (*EvictionJob)(nil)

// Name implements Job.
func (j *EvictionJob) Name() string {
	return "session_eviction"
}

// Schedule implements Job.
func (j *EvictionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultEvictionSchedule
}

// Run evicts idle sessions of chats without a turn in progress and
// refreshes the session gauge.
func (j *EvictionJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: session eviction cancelled: %w", ctx.Err())
	}

	maxIdle := j.MaxIdle
	if maxIdle <= 0 {
		maxIdle = DefaultIdleTimeout
	}

	var busy func(string) bool
	if j.Active != nil {
		busy = j.Active.Busy
	}
	evicted := j.Store.EvictIdleExcept(maxIdle, busy)

	remaining := j.Store.Len()
	j.Metrics.RecordEvictions(evicted)
	j.Metrics.SetSessions(remaining)

	if evicted > 0 && j.Logger != nil {
		j.Logger.Info("cron: evicted idle sessions",
			"count", evicted,
			"remaining", remaining,
			"max_idle", maxIdle,
		)
	}
	return nil
}
