package pubsub

import "context"

// HeaderPropagator abstracts injecting tracing context into message headers.
// Implementations may bridge to OpenTelemetry or any other propagation
// standard; this keeps adapters decoupled from concrete tracing libraries.
// Implementations must be safe for concurrent use.
type HeaderPropagator interface {
	Inject(ctx context.Context, headers map[string]string)
}

// NopHeaderPropagator is a no-op implementation useful for tests or when
// tracing is disabled.
type NopHeaderPropagator struct{}

func (NopHeaderPropagator) Inject(ctx context.Context, headers map[string]string) {
	_ = ctx
	_ = headers
}
