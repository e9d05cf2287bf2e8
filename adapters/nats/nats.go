// Package nats adapts the NATS publish/subscribe primitive to the
// pubsub.Broker contract.
package nats

import (
	"context"
	"errors"
	"fmt"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// Client is a minimal NATS-like interface decoupled from any concrete
// library. Users can provide a wrapper around their NATS connection to
// satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error

	// Subscribe delivers every message on subject to fn.
	Subscribe(subject string, fn func(subject string, data []byte, headers map[string]string)) (Unsubscriber, error)
}

// Unsubscriber detaches a live subscription.
type Unsubscriber interface {
	Unsubscribe() error
}

// Adapter implements pubsub.Broker using an injected NATS-like Client.
type Adapter struct {
	Client Client
}

var _ pubsub.Broker = (*Adapter)(nil)

// New creates a new NATS adapter instance with the provided client.
func New(c Client) *Adapter { return &Adapter{Client: c} }

// Broadcast publishes raw event data to a subject.
func (a *Adapter) Broadcast(ctx context.Context, topic string, data []byte, headers map[string]string) error {
	if err := a.ready(ctx, serr.ErrPublishFailed, "publish"); err != nil {
		return err
	}

	if err := a.Client.Publish(topic, data, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats publish to %q: %w", topic, errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}

// Subscribe attaches fn to a subject.
func (a *Adapter) Subscribe(topic string, fn func(pubsub.Message)) (pubsub.Subscription, error) {
	if a.Client == nil {
		return nil, fmt.Errorf("nats subscribe: %w", serr.ErrSubscribeFailed)
	}

	unsub, err := a.Client.Subscribe(topic, func(subject string, data []byte, headers map[string]string) {
		fn(pubsub.Message{Topic: subject, Data: data, Headers: headers})
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %q: %w", topic, errors.Join(serr.ErrSubscribeFailed, err))
	}

	return unsub, nil
}

func (a *Adapter) ready(ctx context.Context, base error, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Client == nil {
		return fmt.Errorf("nats %s: %w", label, base)
	}

	return nil
}
