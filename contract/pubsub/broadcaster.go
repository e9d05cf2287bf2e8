package pubsub

import "context"

// Message is a raw payload received from the broadcast primitive.
// Subscribers decode event envelopes out of Data; anything else on the
// topic is dropped.
type Message struct {
	Topic   string
	Data    []byte
	Headers map[string]string
}

// Broadcaster is the publish side of the broadcast primitive. Library users
// provide an implementation backed by their transport (NATS, Kafka, RabbitMQ,
// in-memory). Delivery is best-effort: no durability across restarts.
type Broadcaster interface {
	// Broadcast publishes raw data to a topic with optional headers.
	Broadcast(ctx context.Context, topic string, data []byte, headers map[string]string) error
}

// Subscription is a live attachment to one topic.
type Subscription interface {
	// Unsubscribe detaches from the topic. Safe to call once.
	Unsubscribe() error
}

// Broker is the full broadcast primitive: publish plus topic subscription.
// NATS and the in-memory adapter implement it; publish-only transports
// (Kafka, RabbitMQ) implement just Broadcaster.
type Broker interface {
	Broadcaster

	// Subscribe registers fn for every message delivered on topic.
	// fn is invoked sequentially per subscription in delivery order.
	Subscribe(topic string, fn func(Message)) (Subscription, error)
}
