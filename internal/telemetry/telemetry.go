// Package telemetry installs the process-wide OpenTelemetry tracer
// provider. Without an OTLP endpoint the global no-op provider stays in
// place and spans cost nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const tracesPath = "/v1/traces"

// Config selects the trace exporter.
type Config struct {
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318.
	// Empty disables export.
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of root traces kept. Default: 1.
	SampleRatio float64 `yaml:"sample_ratio"`

	ServiceName    string `yaml:"-"`
	ServiceVersion string `yaml:"-"`
}

// Enabled reports whether an exporter is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// Validate checks the endpoint URL and sample ratio.
func (c Config) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample_ratio %v outside [0, 1]", c.SampleRatio)
	}
	if c.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("telemetry: endpoint %q must be an http(s) URL", c.Endpoint)
	}
	return nil
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a batching OTLP/HTTP tracer provider as the global one
// when cfg.Endpoint is set. The returned ShutdownFunc is always non-nil.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled() {
		return noopShutdown, nil
	}
	if err := cfg.Validate(); err != nil {
		return noopShutdown, err
	}

	tp, err := NewTracerProvider(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		if logger != nil {
			logger.Warn("opentelemetry error", "error", err)
		}
	}))

	if logger != nil {
		logger.Info("tracing enabled", "endpoint", cfg.Endpoint, "sample_ratio", sampleRatio(cfg))
	}

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telemetry: shutdown: %w", err)
		}
		return nil
	}, nil
}

// NewTracerProvider builds an SDK tracer provider exporting to
// cfg.Endpoint. It does not touch global state.
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	endpoint, err := tracesURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg)))),
	), nil
}

// tracesURL treats endpoint as the collector base URL, the way
// OTEL_EXPORTER_OTLP_ENDPOINT is defined, and appends the traces path.
func tracesURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("telemetry: parse endpoint: %w", err)
	}
	p := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(p, tracesPath) {
		p += tracesPath
	}
	u.Path = p
	return u.String(), nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	name := cfg.ServiceName
	if name == "" {
		name = "relaybot"
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", name)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	return res, nil
}

func sampleRatio(cfg Config) float64 {
	if cfg.SampleRatio == 0 {
		return 1
	}
	return cfg.SampleRatio
}
