//go:build franz

package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

// Concrete franz-go backed Writer and constructor.

// SASLConfig selects a SASL mechanism: "plain", "scram-sha-256" or
// "scram-sha-512". An empty mechanism disables SASL.
type SASLConfig struct {
	Mechanism string
	Username  string
	Password  string
}

type Config struct {
	Brokers []string
	TLS     *tls.Config
	SASL    *SASLConfig

	// ClientID identifies this producer to the brokers.
	ClientID string

	// ProduceTimeout bounds each synchronous produce. Zero means no bound
	// beyond the client's own defaults.
	ProduceTimeout time.Duration

	Acks        kgo.Acks
	Idempotent  bool
	Compression kgo.CompressionType
}

type kgoWriter struct {
	cl      *kgo.Client
	timeout time.Duration
}

func (w kgoWriter) Write(topic string, key, value []byte, headers map[string]string) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	ctx := context.Background()

	if w.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	return w.cl.ProduceSync(ctx, rec).FirstErr()
}

func saslOpt(cfg *SASLConfig) (kgo.Opt, error) {
	auth := scram.Auth{User: cfg.Username, Pass: cfg.Password}

	switch cfg.Mechanism {
	case "plain":
		return kgo.SASL(plain.Auth{User: cfg.Username, Pass: cfg.Password}.AsMechanism()), nil
	case "scram-sha-256":
		return kgo.SASL(auth.AsSha256Mechanism()), nil
	case "scram-sha-512":
		return kgo.SASL(auth.AsSha512Mechanism()), nil
	default:
		return nil, fmt.Errorf("%w: unsupported sasl mechanism %q", serr.ErrConnection, cfg.Mechanism)
	}
}

// NewWithKgo builds a franz-go backed Adapter. The returned cleanup closes
// the underlying client.
func NewWithKgo(cfg Config) (*Adapter, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", serr.ErrConnection)
	}

	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}

	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}

	if cfg.SASL != nil && cfg.SASL.Mechanism != "" {
		opt, err := saslOpt(cfg.SASL)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, opt)
	}

	if cfg.Idempotent {
		opts = append(opts, kgo.IdempotentProducer())
	}

	if cfg.Compression != 0 {
		opts = append(opts, kgo.ProducerBatchCompression(cfg.Compression))
	}

	if cfg.Acks != 0 {
		opts = append(opts, kgo.RequiredAcks(cfg.Acks))

		// acks below all-ISR cannot be combined with idempotent writes
		if !cfg.Idempotent {
			opts = append(opts, kgo.DisableIdempotentWrite())
		}
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client init: %w", serr.ErrConnection, err)
	}

	return New(kgoWriter{cl: cl, timeout: cfg.ProduceTimeout}), cl.Close, nil
}
