// Package publisher resolves the concrete publisher implementation for
// domain and integration events and forwards publish calls to it.
//
// Publisher selection is injected at construction rather than looked up from
// process-wide configuration at call time; test doubles and production
// broadcasters swap without global state.
package publisher

import (
	"context"
	"log/slog"

	"github.com/next-trace/scg-domain-events/contract/event"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// Resolver holds the configured publisher for each event class: domain
// events (informal intra-application signaling) and integration events
// (the contractual cross-context channel). Both default to the
// broadcast-backed publisher over the broker passed to NewResolver.
type Resolver struct {
	domain      pubsub.Publisher
	integration pubsub.Publisher
}

// Option overrides a Resolver default.
type Option func(*Resolver)

// WithDomainPublisher overrides the publisher used for domain events.
func WithDomainPublisher(p pubsub.Publisher) Option {
	return func(r *Resolver) { r.domain = p }
}

// WithIntegrationPublisher overrides the publisher used for integration events.
func WithIntegrationPublisher(p pubsub.Publisher) Option {
	return func(r *Resolver) { r.integration = p }
}

// NewResolver constructs a Resolver whose publishers default to a
// BroadcastPublisher over b.
func NewResolver(b pubsub.Broadcaster, logger *slog.Logger, opts ...Option) *Resolver {
	def := NewBroadcast(b, logger)
	r := &Resolver{domain: def, integration: def}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Domain returns the publisher for domain events.
func (r *Resolver) Domain() pubsub.Publisher { return r.domain }

// Integration returns the publisher for integration events.
func (r *Resolver) Integration() pubsub.Publisher { return r.integration }

// PublishDomain forwards one domain event to the domain publisher under its
// derived "{aggregate_type}:{event_type}" topic.
func (r *Resolver) PublishDomain(ctx context.Context, ev event.DomainEvent) error {
	return r.domain.Publish(ctx, ev)
}

// PublishIntegration forwards one integration event to the integration
// publisher under its derived "integration:{source_context}:{event_type}" topic.
func (r *Resolver) PublishIntegration(ctx context.Context, ev event.IntegrationEvent) error {
	return r.integration.Publish(ctx, ev)
}
