package rabbitmq_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-domain-events/adapters/rabbitmq"
	serr "github.com/next-trace/scg-domain-events/contract/errors"
)

type fakePublisher struct {
	msgs []rabbitmq.PubMsg
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, m rabbitmq.PubMsg) error {
	f.msgs = append(f.msgs, m)
	return f.err
}

func TestRabbit_Broadcast_TopicBecomesRoutingKey(t *testing.T) {
	fp := &fakePublisher{}
	ad := rabbitmq.New(fp)

	headers := map[string]string{"event_type": "invoice_paid"}
	if err := ad.Broadcast(context.Background(), "integration:billing:invoice_paid", []byte(`{}`), headers); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if len(fp.msgs) != 1 {
		t.Fatalf("msgs=%d want 1", len(fp.msgs))
	}

	m := fp.msgs[0]
	if m.Exchange != "integration" {
		t.Fatalf("exchange=%q", m.Exchange)
	}

	if m.RoutingKey != "integration:billing:invoice_paid" {
		t.Fatalf("routing key=%q", m.RoutingKey)
	}

	if m.Headers["event_type"] != "invoice_paid" {
		t.Fatalf("headers=%v", m.Headers)
	}
}

func TestRabbit_NilPublisherError(t *testing.T) {
	ad := rabbitmq.New(nil)

	if err := ad.Broadcast(context.Background(), "t", nil, nil); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want publish_failed, got %v", err)
	}
}

func TestRabbit_ErrorWrapping_And_ContextCancel(t *testing.T) {
	fp := &fakePublisher{err: errors.New("channel closed")}
	ad := rabbitmq.New(fp)

	if err := ad.Broadcast(context.Background(), "t", nil, nil); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want wrapped publish_failed, got %v", err)
	}

	fp2 := &fakePublisher{err: context.DeadlineExceeded}
	ad2 := rabbitmq.New(fp2)

	err := ad2.Broadcast(context.Background(), "t", nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("deadline must not be rewrapped, got %v", err)
	}
}

func TestRabbit_CancelledContextShortCircuits(t *testing.T) {
	fp := &fakePublisher{}
	ad := rabbitmq.New(fp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ad.Broadcast(ctx, "t", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}

	if len(fp.msgs) != 0 {
		t.Fatalf("nothing must be published after cancellation")
	}
}
