package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/contract/event"
)

// DefaultPriority is assigned to handlers registered without WithPriority.
const DefaultPriority = 100

// HandlerFunc reacts to one domain event. A nil return means success; any
// error is collected into the dispatch result without stopping other handlers.
type HandlerFunc func(ctx context.Context, ev event.DomainEvent) error

type entry struct {
	handler  HandlerFunc
	priority int
	order    uint64
}

// SubscribeOption configures one handler registration.
type SubscribeOption func(*entry)

// WithPriority orders handler execution: lower runs first. Handlers with
// equal priority run in registration order.
func WithPriority(p int) SubscribeOption {
	return func(e *entry) { e.priority = p }
}

// Bus is the dispatch registry for one bounded context. Registrations are
// serialized behind a lock; handler execution happens in the caller's own
// goroutine and context, outside the lock, so concurrent dispatches run
// their handler chains fully in parallel.
//
// Bus is concurrency-safe and contains no global state.
type Bus struct {
	mu     sync.RWMutex
	reg    map[event.Type][]entry
	seq    uint64
	logger *slog.Logger
}

// New constructs a Bus for one bounded context. A nil logger falls back to
// slog.Default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		reg:    make(map[event.Type][]entry),
		logger: logger,
	}
}

// Subscribe appends a handler for the event type. It always succeeds;
// duplicate subscriptions are kept and all run. There is no unsubscribe.
func (b *Bus) Subscribe(t event.Type, h HandlerFunc, opts ...SubscribeOption) {
	e := entry{handler: h, priority: DefaultPriority}
	for _, opt := range opts {
		opt(&e)
	}

	b.mu.Lock()
	b.seq++
	e.order = b.seq
	b.reg[t] = append(b.reg[t], e)
	b.mu.Unlock()
}

// HandlerCount reports how many handlers are registered for the event type.
func (b *Bus) HandlerCount(t event.Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.reg[t])
}

// Dispatch runs every handler registered for the event's type, in ascending
// (priority, registration order), synchronously in the caller's goroutine.
// The registry is only read under the lock; the handler list is re-sorted on
// every dispatch so registrations added since the last call take effect.
//
// A handler failure or panic never stops the remaining handlers and never
// propagates to the caller: Dispatch returns nil when every handler
// succeeded, else a *DispatchError carrying all individual failures.
func (b *Bus) Dispatch(ctx context.Context, ev event.DomainEvent) error {
	b.mu.RLock()
	entries := append([]entry(nil), b.reg[ev.EventType]...)
	b.mu.RUnlock()

	if len(entries) == 0 {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}

		return entries[i].order < entries[j].order
	})

	var failures []HandlerFailure

	for _, e := range entries {
		if err := b.invoke(ctx, e, ev); err != nil {
			failures = append(failures, HandlerFailure{
				Priority: e.priority,
				Order:    e.order,
				Err:      err,
			})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return &DispatchError{EventType: ev.EventType, Failures: failures}
}

// invoke runs one handler, converting a panic into a structured failure so
// the bus stays usable after a handler crash.
func (b *Bus) invoke(ctx context.Context, e entry, ev event.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", serr.ErrHandlerPanicked, r)
			b.log(ev).ErrorContext(ctx, "event handler panicked",
				"event_type", ev.EventType,
				"event_id", ev.EventID,
				"priority", e.priority,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := e.handler(ctx, ev); err != nil {
		b.log(ev).WarnContext(ctx, "event handler failed",
			"event_type", ev.EventType,
			"event_id", ev.EventID,
			"priority", e.priority,
			"error", err,
		)

		return fmt.Errorf("%w: %w", serr.ErrHandlerFailed, err)
	}

	return nil
}

// log picks the logger with criticality attached; critical events stand out
// in monitoring without changing dispatch behavior.
func (b *Bus) log(ev event.DomainEvent) *slog.Logger {
	if ev.Criticality == event.CriticalityCritical {
		return b.logger.With("criticality", event.CriticalityCritical)
	}

	return b.logger
}
