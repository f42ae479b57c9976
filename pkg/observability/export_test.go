package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BuildResource exposes buildResource to tests.
func BuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// SamplesRootSpan reports whether the sampler chosen for cfg samples a root span.
func SamplesRootSpan(cfg Config) bool {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(selectSampler(cfg)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("sampler").Start(context.Background(), "root")
	defer span.End()

	return span.SpanContext().IsSampled()
}

// FilterLogger exposes filterLogger to tests.
func FilterLogger(cfg Config) *slog.Logger {
	return filterLogger(cfg)
}
