package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PubMsg is one outgoing AMQP publication.
type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

// Publisher abstracts the AMQP publish call so tests can fake the channel.
type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Adapter implements the publish side of the broadcast primitive
// (pubsub.Broadcaster) over RabbitMQ. Topics map to routing keys on the
// integration exchange.
type Adapter struct {
	Publisher Publisher
}

var _ pubsub.Broadcaster = (*Adapter)(nil)

// New creates a new RabbitMQ adapter with the provided publisher.
func New(p Publisher) *Adapter { return &Adapter{Publisher: p} }

// Broadcast publishes raw event data under the topic as routing key.
func (a *Adapter) Broadcast(ctx context.Context, topic string, data []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Publisher == nil {
		return fmt.Errorf("rabbitmq publish: %w", serr.ErrPublishFailed)
	}

	msg := PubMsg{
		Exchange:   integrationExchange,
		RoutingKey: topic,
		Body:       data,
		Headers:    headers,
	}
	if err := a.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq publish to %q: %w", topic, errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	return p.ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			Headers:     h,
			Body:        m.Body,
			ContentType: "application/json",
		},
	)
}

// NewWithAMQPChannel adapts an existing channel without reconnect handling.
func NewWithAMQPChannel(ch *amqp.Channel) *Adapter {
	return &Adapter{Publisher: amqpChannelPublisher{ch: ch}}
}
