package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/event"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// BroadcastPublisher is the default pubsub.Publisher: it serializes the
// event envelope to JSON and hands it to the broadcast primitive under the
// event's derived topic (or an explicit one).
type BroadcastPublisher struct {
	broadcaster pubsub.Broadcaster
	propagator  pubsub.HeaderPropagator // optional, for tracing headers
	logger      *slog.Logger
}

var _ pubsub.Publisher = (*BroadcastPublisher)(nil)

// NewBroadcast constructs a BroadcastPublisher over the given broadcaster.
// A nil logger falls back to slog.Default.
func NewBroadcast(b pubsub.Broadcaster, logger *slog.Logger) *BroadcastPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &BroadcastPublisher{broadcaster: b, logger: logger}
}

// NewBroadcastWithPropagator additionally configures a HeaderPropagator that
// injects tracing context into outgoing message headers.
func NewBroadcastWithPropagator(
	b pubsub.Broadcaster,
	hp pubsub.HeaderPropagator,
	logger *slog.Logger,
) *BroadcastPublisher {
	p := NewBroadcast(b, logger)
	p.propagator = hp

	return p
}

// Publish sends the event under its derived topic.
func (p *BroadcastPublisher) Publish(ctx context.Context, ev event.Event) error {
	return p.PublishTo(ctx, ev, ev.Topic())
}

// PublishTo sends the event under an explicit topic.
func (p *BroadcastPublisher) PublishTo(ctx context.Context, ev event.Event, topic string) error {
	if err := p.ready(ctx); err != nil {
		return err
	}

	env := ev.Envelope()

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("publish %s serialize: %w", env.EventType, errors.Join(serr.ErrSerializationFailed, err))
	}

	headers := p.headers(ctx, env)

	if err := p.broadcaster.Broadcast(ctx, topic, body, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("publish %s to %q: %w", env.EventType, topic, errors.Join(serr.ErrPublishFailed, err))
	}

	p.logger.DebugContext(ctx, "event published",
		"topic", topic, "event_type", env.EventType, "event_id", env.EventID)

	return nil
}

// PublishAll sends events sequentially and returns the first error,
// aborting the remainder. Already-published events stay published; this is
// best-effort delivery, not a transaction.
func (p *BroadcastPublisher) PublishAll(ctx context.Context, evs []event.Event) error {
	for _, ev := range evs {
		if err := p.Publish(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}

func (p *BroadcastPublisher) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.broadcaster == nil {
		return fmt.Errorf("broadcast publish: %w", serr.ErrPublishFailed)
	}

	return nil
}

func (p *BroadcastPublisher) headers(ctx context.Context, env event.Envelope) map[string]string {
	h := map[string]string{"event_type": string(env.EventType)}
	if env.CorrelationID != "" {
		h["correlation_id"] = env.CorrelationID
	}

	if p.propagator != nil {
		p.propagator.Inject(ctx, h)
	}

	return h
}
