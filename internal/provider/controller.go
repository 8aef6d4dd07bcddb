package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/relaybot/internal/metrics"
)

const (
	defaultAttemptFactor  = 2
	defaultRequestTimeout = 30 * time.Second
	defaultCoolDown       = 60 * time.Second
	defaultRateLimitPause = time.Second

	tracerName = "github.com/flemzord/relaybot/internal/provider"
)

// nopHandler is a slog.Handler that discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// ControllerConfig groups the controller's dependencies and retry policy.
type ControllerConfig struct {
	Ledger    *Ledger
	Generator Generator

	// Model is the primary model identifier.
	Model string

	// FallbackModel, when set, is tried once after the primary model
	// rejects a request as malformed. Empty means no fallback.
	FallbackModel string

	// AttemptFactor multiplies the credential count to form the per-call
	// budget. Default: 2.
	AttemptFactor int

	// RequestTimeout bounds each upstream call. Default: 30s.
	RequestTimeout time.Duration

	// CoolDown is how long a rate-limited credential stays unusable.
	// Default: 60s.
	CoolDown time.Duration

	// RateLimitPause is the wait after a rate-limit rotation. Default: 1s.
	// A negative value disables the pause.
	RateLimitPause time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

func (c ControllerConfig) withDefaults() ControllerConfig {
	if c.AttemptFactor <= 0 {
		c.AttemptFactor = defaultAttemptFactor
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.CoolDown <= 0 {
		c.CoolDown = defaultCoolDown
	}
	if c.RateLimitPause < 0 {
		c.RateLimitPause = 0
	} else if c.RateLimitPause == 0 {
		c.RateLimitPause = defaultRateLimitPause
	}
	if c.Logger == nil {
		c.Logger = slog.New(nopHandler{})
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	return c
}

// Controller turns one prompt into one reply, rotating credentials on
// failure. At most one upstream call succeeds per Complete; calls are
// never issued in parallel.
type Controller struct {
	cfg ControllerConfig

	// sleep is injectable for testing.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController validates cfg and returns a ready controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Ledger == nil {
		return nil, ErrNoCredentials
	}
	if cfg.Generator == nil {
		return nil, ErrNoGenerator
	}
	if cfg.Model == "" {
		return nil, errors.New("provider: model is required")
	}
	return &Controller{
		cfg:   cfg.withDefaults(),
		sleep: sleepCtx,
	}, nil
}

// MaxAttempts returns the upstream call budget for one Complete.
func (c *Controller) MaxAttempts() int {
	return c.cfg.Ledger.Len() * c.cfg.AttemptFactor
}

// Ledger returns the credential ledger the controller rotates.
func (c *Controller) Ledger() *Ledger {
	return c.cfg.Ledger
}

// Complete sends prompt upstream and returns the reply text.
//
// Upstream calls are capped at MaxAttempts, plus the single fallback-model
// retry after a rejected request. Skipping a cooling credential
// does not count as a call but has its own cap of MaxAttempts, so a fully
// cooling ledger fails fast with ErrExhausted. Callers see the reply,
// ErrBadRequest, ErrExhausted, or the context's error.
func (c *Controller) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.cfg.Tracer.Start(ctx, "provider.complete")
	defer span.End()

	ledger := c.cfg.Ledger
	maxAttempts := c.MaxAttempts()
	model := c.cfg.Model
	usingFallback := false
	// fallbackPending grants the fallback model one call beyond the budget.
	fallbackPending := false

	var (
		lastErr error
		calls   int
		skips   int
	)

	for (calls < maxAttempts || fallbackPending) && skips < maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", c.fail(span, "canceled", err)
		}

		idx, key := ledger.Current()
		if !ledger.IsUsable(idx) {
			skips++
			next := ledger.Rotate()
			c.cfg.Metrics.RecordRotation("cooling_skip")
			c.cfg.Logger.Debug("credential cooling, skipped",
				"key_index", idx,
				"next_index", next,
			)
			continue
		}

		calls++
		fallbackPending = false
		text, err := c.attempt(ctx, idx, key, model, prompt)
		if err == nil {
			span.SetAttributes(
				attribute.Int("relaybot.calls", calls),
				attribute.Int("relaybot.key_index", idx),
			)
			c.cfg.Metrics.RecordCompletion("success")
			return text, nil
		}
		lastErr = err

		switch Classify(err) {
		case ClassRateLimited:
			ledger.MarkCooling(idx, c.cfg.CoolDown)
			next := ledger.Rotate()
			c.cfg.Metrics.RecordCooldown()
			c.cfg.Metrics.RecordRotation("rate_limited")
			c.cfg.Logger.Warn("credential rate limited, cooling and rotating",
				"key_index", idx,
				"next_index", next,
				"cool_down", c.cfg.CoolDown,
				"error", err,
			)
			if err := c.sleep(ctx, c.cfg.RateLimitPause); err != nil {
				return "", c.fail(span, "canceled", err)
			}

		case ClassBadRequest:
			if c.cfg.FallbackModel != "" && !usingFallback {
				usingFallback = true
				fallbackPending = true
				model = c.cfg.FallbackModel
				c.cfg.Logger.Warn("request rejected, retrying with fallback model",
					"model", c.cfg.Model,
					"fallback_model", model,
					"error", err,
				)
				continue
			}
			c.cfg.Logger.Error("request rejected by upstream",
				"model", model,
				"calls", calls,
				"error", err,
			)
			return "", c.fail(span, "bad_request", err)

		default:
			next := ledger.Rotate()
			c.cfg.Metrics.RecordRotation("transient")
			c.cfg.Logger.Warn("upstream call failed, rotating",
				"key_index", idx,
				"next_index", next,
				"error", err,
			)
		}
	}

	var err error
	if lastErr != nil {
		err = fmt.Errorf("%w after %d calls: last error: %w", ErrExhausted, calls, lastErr)
	} else {
		err = fmt.Errorf("%w: all %d credentials cooling", ErrExhausted, ledger.Len())
	}
	c.cfg.Logger.Error("all credentials exhausted",
		"calls", calls,
		"skips", skips,
		"last_error", lastErr,
	)
	return "", c.fail(span, "exhausted", err)
}

// attempt performs one upstream call bounded by RequestTimeout.
func (c *Controller) attempt(ctx context.Context, idx int, key, model, prompt string) (string, error) {
	ctx, span := c.cfg.Tracer.Start(ctx, "provider.attempt", trace.WithAttributes(
		attribute.Int("relaybot.key_index", idx),
		attribute.String("relaybot.model", model),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.cfg.Generator.Generate(callCtx, Request{
		APIKey: key,
		Model:  model,
		Prompt: prompt,
	})
	latency := time.Since(start)

	// Our own deadline is an upstream timeout; the caller's is not.
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: request timed out after %s", ErrTransient, c.cfg.RequestTimeout)
	}

	if err != nil {
		outcome := Classify(err).String()
		c.cfg.Metrics.RecordUpstream(outcome, latency)
		span.SetAttributes(attribute.String("relaybot.outcome", outcome))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return "", err
	}

	c.cfg.Metrics.RecordUpstream("success", latency)
	span.SetAttributes(
		attribute.String("relaybot.outcome", "success"),
		attribute.Int("relaybot.total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Text, nil
}

// fail records the terminal error on the span and metrics.
func (c *Controller) fail(span trace.Span, result string, err error) error {
	c.cfg.Metrics.RecordCompletion(result)
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	return err
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
