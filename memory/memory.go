// Package memory wires the subsystem over the in-memory broadcast primitive
// in one call, for tests and single-process use.
package memory

import (
	"log/slog"

	"github.com/next-trace/scg-domain-events/adapters/inmemory"
	"github.com/next-trace/scg-domain-events/contract/pubsub"
	"github.com/next-trace/scg-domain-events/publisher"
)

// New constructs an in-memory broker and a publisher resolver over it.
// The broker is returned as the contract type so callers can hand it to
// broadcast subscribers as well.
func New(logger *slog.Logger) (pubsub.Broker, *publisher.Resolver) { //nolint:ireturn
	broker := inmemory.New()
	res := publisher.NewResolver(broker, logger)

	return broker, res
}
