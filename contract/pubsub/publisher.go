package pubsub

import (
	"context"

	"github.com/next-trace/scg-domain-events/contract/event"
)

// Publisher forwards events to the broadcast primitive. Implementations map
// events onto their transport; the default is the broadcast-backed publisher
// in the publisher package.
type Publisher interface {
	// Publish sends one event under its derived topic.
	Publish(ctx context.Context, ev event.Event) error

	// PublishTo sends one event under an explicit topic, overriding derivation.
	PublishTo(ctx context.Context, ev event.Event, topic string) error

	// PublishAll sends events sequentially and returns the first error
	// encountered, aborting the remainder. It is not transactional: events
	// already published stay published.
	PublishAll(ctx context.Context, evs []event.Event) error
}
