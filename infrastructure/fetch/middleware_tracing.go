package fetch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ahrav/go-langrank/internal/ports"
)

// tracedFetcher implements distributed tracing for fetch observability.
// This provides per-request spans for debugging slow or failing sources.
type tracedFetcher struct {
	next        ports.Fetcher
	serviceName string
}

// TracingMiddleware creates middleware that adds OpenTelemetry spans to
// fetches. Span export is whatever the process-global tracer provider is
// configured with; with none installed the spans are no-ops.
func TracingMiddleware(serviceName string) Middleware {
	return func(next ports.Fetcher) ports.Fetcher {
		return &tracedFetcher{
			next:        next,
			serviceName: serviceName,
		}
	}
}

// Fetch executes the request within a trace span carrying the URL, host,
// and payload size.
func (t *tracedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	tracer := otel.Tracer("fetch")
	ctx, span := tracer.Start(ctx, "fetch.request")
	defer span.End()

	span.SetAttributes(
		attribute.String("service.name", t.serviceName),
		attribute.String("http.url", url),
		attribute.String("http.host", hostOf(url)),
	)

	body, err := t.next.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.size", len(body)))
	span.SetStatus(codes.Ok, "fetch completed")
	return body, nil
}
