package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second
)

// Poller implements long-polling for receiving Telegram updates.
type Poller struct {
	client  *Client
	deliver *deliverer
	logger  *slog.Logger
	config  Config

	// retryPause follows a single failure; errorPause follows a run of
	// maxConsecutivePollingErrors. Overridable in tests.
	retryPause time.Duration
	errorPause time.Duration

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// newPoller creates a new Poller.
func newPoller(client *Client, d *deliverer, logger *slog.Logger, config Config) *Poller {
	return &Poller{
		client:     client,
		deliver:    d,
		logger:     logger,
		config:     config,
		retryPause: time.Second,
		errorPause: errorPauseDuration,
		done:       make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine. The loop runs until Stop
// is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)
}

// Stop signals the polling loop to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
	if p.cancel != nil {
		<-p.done
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	var offset int
	var consecutiveErrors int

	for ctx.Err() == nil {
		updates, err := p.client.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         offset,
			Timeout:        p.config.PollingTimeout,
			AllowedUpdates: p.config.AllowedUpdates,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutiveErrors++
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			pause := p.retryPause
			if consecutiveErrors >= maxConsecutivePollingErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", p.errorPause,
				)
				pause = p.errorPause
				consecutiveErrors = 0
			}
			if !sleep(ctx, pause) {
				return
			}
			continue
		}

		consecutiveErrors = 0

		for i := range updates {
			offset = updates[i].UpdateID + 1
			if err := p.deliver.deliver(&updates[i]); err != nil {
				p.logger.Error("failed to deliver update to inbox",
					"update_id", updates[i].UpdateID,
					"error", err,
				)
			}
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
