// Package subscriber provides the long-lived broadcast listener that bridges
// externally-addressed topics to an application-supplied event handler.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/event"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// ErrSkipEvent is returned by an EventHandler to signal an explicit ignore:
// the event was inspected and deliberately not acted on. It is logged but
// never surfaced as a failure.
var ErrSkipEvent = errors.New("event skipped")

// EventHandler is the capability a broadcast subscriber invokes on receipt.
// Implementations declare which event types they want and handle each one.
// Implementations must be safe for concurrent use; messages from different
// topics may arrive on different goroutines.
type EventHandler interface {
	// SubscribedEvents lists the event types this handler wants. A list
	// containing event.All (or an empty list) receives every event.
	SubscribedEvents() []event.Type

	// HandleEvent processes one received event. Return nil for success,
	// ErrSkipEvent for an explicit ignore, any other error for failure.
	HandleEvent(ctx context.Context, env event.Envelope) error
}

// Subscriber attaches an EventHandler to one or more broadcast topics.
// Handler crashes are contained: the subscriber stays subscribed and keeps
// processing subsequent messages. Non-event payloads on the topics are
// dropped silently.
type Subscriber struct {
	broker  pubsub.Broker
	handler EventHandler
	topics  []string
	logger  *slog.Logger

	mu   sync.Mutex
	subs []pubsub.Subscription
}

// New constructs a Subscriber for the given topics. Start must be called to
// begin receiving.
func New(broker pubsub.Broker, handler EventHandler, topics []string, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}

	return &Subscriber{
		broker:  broker,
		handler: handler,
		topics:  topics,
		logger:  logger,
	}
}

// Start subscribes to every configured topic. On a subscription failure it
// detaches whatever was already attached and returns the error.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.broker == nil || s.handler == nil {
		return fmt.Errorf("subscriber start: %w", serr.ErrSubscribeFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, topic := range s.topics {
		sub, err := s.broker.Subscribe(topic, func(msg pubsub.Message) {
			s.onMessage(ctx, msg)
		})
		if err != nil {
			s.detachLocked()

			return fmt.Errorf("subscribe %q: %w", topic, errors.Join(serr.ErrSubscribeFailed, err))
		}

		s.subs = append(s.subs, sub)
	}

	return nil
}

// Close cleanly detaches from all topics. Safe to call more than once.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.detachLocked()
}

func (s *Subscriber) detachLocked() error {
	var errs []error

	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}

	s.subs = nil

	return errors.Join(errs...)
}

func (s *Subscriber) onMessage(ctx context.Context, msg pubsub.Message) {
	env, ok := event.Decode(msg.Data)
	if !ok {
		// Non-event traffic on a shared topic; drop without noise.
		s.logger.DebugContext(ctx, "dropping non-event message", "topic", msg.Topic)

		return
	}

	if !s.wants(env.EventType) {
		return
	}

	switch err := s.handle(ctx, env); {
	case err == nil:
		s.logger.InfoContext(ctx, "event handled",
			"topic", msg.Topic, "event_type", env.EventType, "event_id", env.EventID)
	case errors.Is(err, ErrSkipEvent):
		s.logger.InfoContext(ctx, "event ignored",
			"topic", msg.Topic, "event_type", env.EventType, "event_id", env.EventID)
	default:
		s.logger.ErrorContext(ctx, "event handler failed",
			"topic", msg.Topic, "event_type", env.EventType, "event_id", env.EventID, "error", err)
	}
}

// handle invokes the handler with panic containment so a crash cannot kill
// the subscription loop.
func (s *Subscriber) handle(ctx context.Context, env event.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", serr.ErrHandlerPanicked, r)
			s.logger.ErrorContext(ctx, "event handler panicked",
				"event_type", env.EventType,
				"event_id", env.EventID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	return s.handler.HandleEvent(ctx, env)
}

func (s *Subscriber) wants(t event.Type) bool {
	types := s.handler.SubscribedEvents()
	if len(types) == 0 {
		return true
	}

	for _, want := range types {
		if want == event.All || want == t {
			return true
		}
	}

	return false
}
