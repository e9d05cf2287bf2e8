// Package kafka adapts a Kafka producer to the publish side of the
// broadcast primitive. Topics map directly to Kafka topics.
package kafka

import (
	"context"
	"errors"
	"fmt"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
)

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(topic string, key, value []byte, headers map[string]string) error
}

// Adapter implements pubsub.Broadcaster using an injected Writer.
type Adapter struct {
	Writer Writer
}

var _ pubsub.Broadcaster = (*Adapter)(nil)

// New creates a new Kafka adapter instance with the provided writer.
func New(w Writer) *Adapter { return &Adapter{Writer: w} }

// Broadcast writes raw event data to a topic. A "key" header, when present,
// becomes the record key for partition affinity and is not forwarded as a
// record header.
func (a *Adapter) Broadcast(ctx context.Context, topic string, data []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Writer == nil {
		return fmt.Errorf("kafka publish: %w", serr.ErrPublishFailed)
	}

	var key []byte

	if k, ok := headers["key"]; ok {
		key = []byte(k)
		rest := make(map[string]string, len(headers)-1)
		for hk, hv := range headers {
			if hk != "key" {
				rest[hk] = hv
			}
		}
		headers = rest
	}

	if err := a.Writer.Write(topic, key, data, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("kafka publish to %q: %w", topic, errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}
