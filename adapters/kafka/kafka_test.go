package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-domain-events/adapters/kafka"
	serr "github.com/next-trace/scg-domain-events/contract/errors"
)

type fakeWriter struct {
	calls []struct {
		topic   string
		key     []byte
		value   []byte
		headers map[string]string
	}
	err error
}

func (f *fakeWriter) Write(topic string, key, value []byte, headers map[string]string) error {
	f.calls = append(f.calls, struct {
		topic   string
		key     []byte
		value   []byte
		headers map[string]string
	}{topic, key, value, headers})

	return f.err
}

func TestKafka_Broadcast_KeyHeaderBecomesRecordKey(t *testing.T) {
	fw := &fakeWriter{}
	ad := kafka.New(fw)

	headers := map[string]string{"key": "inv-1", "event_type": "invoice_paid"}
	if err := ad.Broadcast(context.Background(), "integration:billing:invoice_paid", []byte(`{}`), headers); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if len(fw.calls) != 1 {
		t.Fatalf("calls=%d want 1", len(fw.calls))
	}

	c := fw.calls[0]
	if string(c.key) != "inv-1" {
		t.Fatalf("record key=%q", c.key)
	}

	if _, ok := c.headers["key"]; ok {
		t.Fatalf("key header must not be forwarded: %v", c.headers)
	}

	if c.headers["event_type"] != "invoice_paid" {
		t.Fatalf("headers=%v", c.headers)
	}
}

func TestKafka_Broadcast_NoKeyHeader(t *testing.T) {
	fw := &fakeWriter{}
	ad := kafka.New(fw)

	if err := ad.Broadcast(context.Background(), "t", []byte("v"), map[string]string{"h": "v"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if fw.calls[0].key != nil {
		t.Fatalf("expected nil record key, got %q", fw.calls[0].key)
	}
}

func TestKafka_NilWriterError(t *testing.T) {
	ad := kafka.New(nil)

	if err := ad.Broadcast(context.Background(), "t", nil, nil); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want publish_failed, got %v", err)
	}
}

func TestKafka_ErrorWrapping_And_ContextCancel(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	ad := kafka.New(fw)

	if err := ad.Broadcast(context.Background(), "t", nil, nil); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want wrapped publish_failed, got %v", err)
	}

	fw2 := &fakeWriter{err: context.Canceled}
	ad2 := kafka.New(fw2)

	err := ad2.Broadcast(context.Background(), "t", nil, nil)
	if !errors.Is(err, context.Canceled) || errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("cancellation must not be rewrapped, got %v", err)
	}
}
