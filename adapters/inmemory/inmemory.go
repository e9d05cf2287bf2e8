// Package inmemory provides a process-local implementation of the broadcast
// primitive. Delivery is synchronous and non-durable, suitable for tests,
// examples, and single-process deployments.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/next-trace/scg-domain-events/contract/event"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// Broker is a thread-safe in-memory pubsub.Broker. Messages broadcast to a
// topic are delivered synchronously, in subscription order, in the
// publisher's goroutine.
type Broker struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

var _ pubsub.Broker = (*Broker)(nil)

// New creates a new in-memory broker instance.
func New() *Broker {
	return &Broker{subs: make(map[string][]*subscription)}
}

type subscription struct {
	broker *Broker
	topic  string
	fn     func(pubsub.Message)
}

func (s *subscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	list := s.broker.subs[s.topic]
	for i, sub := range list {
		if sub == s {
			s.broker.subs[s.topic] = append(list[:i], list[i+1:]...)

			break
		}
	}

	return nil
}

// Subscribe registers fn for every message broadcast to topic.
func (b *Broker) Subscribe(topic string, fn func(pubsub.Message)) (pubsub.Subscription, error) {
	if fn == nil {
		return nil, errors.New("inmemory subscribe: nil handler")
	}

	s := &subscription{broker: b, topic: topic, fn: fn}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	return s, nil
}

// Broadcast delivers data to every current subscriber of topic. The
// subscriber list is copied before iteration so handlers may subscribe or
// unsubscribe without deadlocking.
func (b *Broker) Broadcast(ctx context.Context, topic string, data []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	subs := append([]*subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	msg := pubsub.Message{Topic: topic, Data: data, Headers: headers}
	for _, s := range subs {
		s.fn(msg)
	}

	return nil
}

// Publisher is a thread-safe recording pubsub.Publisher for tests and
// examples: it keeps every published event and the topic it went to.
type Publisher struct {
	mu     sync.Mutex
	Events []event.Event
	Topics []string
}

var _ pubsub.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, ev event.Event) error {
	return p.PublishTo(ctx, ev, ev.Topic())
}

func (p *Publisher) PublishTo(ctx context.Context, ev event.Event, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.Events = append(p.Events, ev)
	p.Topics = append(p.Topics, topic)
	p.mu.Unlock()

	return nil
}

func (p *Publisher) PublishAll(ctx context.Context, evs []event.Event) error {
	for _, ev := range evs {
		if err := p.Publish(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}
