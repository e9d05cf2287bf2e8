package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	serr "github.com/next-trace/scg-domain-events/contract/errors"
)

// Concrete NATS connection-backed Client and constructor.

type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	MaxReconnects int
}

type natsClient struct{ nc *nats.Conn }

func (c natsClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := &nats.Msg{Subject: subject, Data: data}
	for k, v := range headers {
		if msg.Header == nil {
			msg.Header = nats.Header{}
		}

		msg.Header.Add(k, v)
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}

	return c.nc.Flush()
}

func (c natsClient) Subscribe(
	subject string,
	fn func(subject string, data []byte, headers map[string]string),
) (Unsubscriber, error) {
	sub, err := c.nc.Subscribe(subject, func(m *nats.Msg) {
		var headers map[string]string
		if len(m.Header) > 0 {
			headers = make(map[string]string, len(m.Header))
			for k := range m.Header {
				headers[k] = m.Header.Get(k)
			}
		}

		fn(m.Subject, m.Data, headers)
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// NewWithNATS creates a real NATS connection and returns an Adapter and a
// cleanup. The cleanup drains in-flight messages before closing.
func NewWithNATS(cfg Config) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", serr.ErrConnection)
	}

	var opts []nats.Option

	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}

	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", serr.ErrConnection, err)
	}

	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
			nc.Close()
		}
	}

	return New(natsClient{nc: nc}), cleanup, nil
}
