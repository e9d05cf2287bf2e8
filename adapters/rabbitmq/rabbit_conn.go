package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	serr "github.com/next-trace/scg-domain-events/contract/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Concrete AMQP connection-backed publisher with auto-reconnect.

const (
	integrationExchange     = "integration"
	integrationExchangeType = "topic"
)

type Config struct {
	URL         string
	ConnTimeout time.Duration
}

// connectedPublisher owns one live connection+channel pair and replaces it
// whenever the broker drops the connection. Publish blocks until a channel
// is available or the context ends.
type connectedPublisher struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	ch    *amqp.Channel
	ready chan struct{} // closed while a channel is usable

	// lifecycle of the maintain goroutine; cancel stops redialing.
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *connectedPublisher) Publish(ctx context.Context, m PubMsg) error {
	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	return ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Headers:      h,
			ContentType:  "application/json",
			Body:         m.Body,
		},
	)
}

func (p *connectedPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.RLock()
	ch, ready := p.ch, p.ready
	p.mu.RUnlock()

	if ch != nil {
		return ch, nil
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, fmt.Errorf("%w: rabbitmq publisher closed", serr.ErrPublishFailed)
	}

	p.mu.RLock()
	ch = p.ch
	p.mu.RUnlock()

	if ch == nil {
		return nil, fmt.Errorf("%w: rabbitmq not connected", serr.ErrConnection)
	}

	return ch, nil
}

// maintain dials, declares the integration exchange, then blocks on close
// notifications, redialing under an exponential backoff until Close.
func (p *connectedPublisher) maintain() {
	for p.ctx.Err() == nil {
		policy := backoff.WithContext(backoff.NewExponentialBackOff(
			backoff.WithMaxElapsedTime(0),
			backoff.WithMaxInterval(30*time.Second),
		), p.ctx)

		pair, err := backoff.RetryNotifyWithData(p.dial, policy,
			func(err error, next time.Duration) {
				p.logger.Warn("rabbitmq connect failed, will redial",
					"error", err, "next_attempt_in", next)
			})
		if err != nil {
			// only on cancellation; dial errors keep the policy going
			return
		}

		p.attach(pair)
		p.logger.Info("rabbitmq connected", "exchange", integrationExchange)

		closed := pair.conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-p.ctx.Done():
			_ = pair.ch.Close()
			_ = pair.conn.Close()

			return
		case reason := <-closed:
			p.detach()
			p.logger.Warn("rabbitmq connection lost", "reason", reason)
			_ = pair.conn.Close()
		}
	}
}

type connPair struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *connectedPublisher) dial() (connPair, error) {
	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Properties: amqp.Table{"product": "scg-domain-events"},
		Dial:       amqp.DefaultDial(p.cfg.ConnTimeout),
	})
	if err != nil {
		return connPair{}, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return connPair{}, err
	}

	if err := ch.ExchangeDeclare(
		integrationExchange,
		integrationExchangeType,
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return connPair{}, err
	}

	return connPair{conn: conn, ch: ch}, nil
}

func (p *connectedPublisher) attach(pair connPair) {
	p.mu.Lock()
	p.ch = pair.ch
	close(p.ready)
	p.mu.Unlock()
}

func (p *connectedPublisher) detach() {
	p.mu.Lock()
	p.ch = nil
	p.ready = make(chan struct{})
	p.mu.Unlock()
}

func (p *connectedPublisher) close() {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
}

// NewWithAMQPConn dials RabbitMQ with auto-reconnect, ensures the integration
// exchange, and returns an Adapter and a cleanup. A nil logger falls back to
// slog.Default.
func NewWithAMQPConn(cfg Config, logger *slog.Logger) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", serr.ErrConnection)
	}

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &connectedPublisher{
		cfg:    cfg,
		logger: logger,
		ready:  make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go p.maintain()

	return New(p), p.close, nil
}
