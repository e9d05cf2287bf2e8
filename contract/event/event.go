package event

import (
	"maps"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Type identifies the category of an event (e.g. "user_registered").
// It is the dispatch key on the context event bus and part of derived topics.
type Type string

// All is the wildcard subscription marker. A broadcast handler that lists it
// in SubscribedEvents receives every event regardless of type.
const All Type = "*"

// Criticality is a consumer hint for alerting/monitoring.
// It never changes dispatch behavior.
type Criticality string

const (
	CriticalityNormal   Criticality = "normal"
	CriticalityCritical Criticality = "critical"
)

// DomainEvent is an immutable record of a fact that happened inside one
// bounded context. Construct it with NewDomain; treat all fields, including
// Payload, as read-only afterwards.
type DomainEvent struct {
	// EventID is globally unique and assigned at construction.
	EventID string

	// EventType is the symbolic dispatch tag.
	EventType Type

	// AggregateID identifies the entity the event describes. It may be any
	// comparable value, including nil; consumers must tolerate nil rather
	// than reject the event.
	AggregateID any

	// AggregateType is the kind of the entity (e.g. "user").
	AggregateType string

	// Payload is an open mapping of symbolic keys to values. The constructor
	// copies the caller's map so later caller mutation cannot leak in.
	Payload map[string]any

	Criticality Criticality

	// CorrelationID and CausationID thread tracing identity through from the
	// triggering request. Optional.
	CorrelationID string
	CausationID   string

	// OccurredAt is set at construction.
	OccurredAt time.Time
}

// IntegrationEvent is a domain event promoted to a stable cross-context
// contract. Its payload shape is a public commitment between contexts.
type IntegrationEvent struct {
	DomainEvent

	// SourceContext names the bounded context that produced the event and
	// is part of the derived topic.
	SourceContext string
}

// Option configures optional event fields at construction.
type Option func(*DomainEvent)

// WithCriticality marks the event normal or critical.
func WithCriticality(c Criticality) Option {
	return func(e *DomainEvent) { e.Criticality = c }
}

// WithCorrelationID threads a request correlation identifier through the event.
func WithCorrelationID(id string) Option {
	return func(e *DomainEvent) { e.CorrelationID = id }
}

// WithCausationID records the identifier of the event/command that caused this one.
func WithCausationID(id string) Option {
	return func(e *DomainEvent) { e.CausationID = id }
}

// WithEventID overrides the generated event identifier. Intended for
// deterministic construction in tests and for re-wrapping received events.
func WithEventID(id string) Option {
	return func(e *DomainEvent) { e.EventID = id }
}

// NewDomain constructs a fully-populated domain event. There is no validation
// beyond shape here; required-field rules (e.g. "aggregate id must be set for
// this event type") belong to the calling factory, which must reject before
// constructing the event.
func NewDomain(t Type, aggregateID any, aggregateType string, payload map[string]any, opts ...Option) DomainEvent {
	e := DomainEvent{
		EventID:       uuid.NewString(),
		EventType:     t,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Payload:       clonePayload(payload),
		Criticality:   CriticalityNormal,
		OccurredAt:    time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

// NewIntegration constructs an integration event originating from the named
// bounded context.
func NewIntegration(
	sourceContext string,
	t Type,
	aggregateID any,
	aggregateType string,
	payload map[string]any,
	opts ...Option,
) IntegrationEvent {
	return IntegrationEvent{
		DomainEvent:   NewDomain(t, aggregateID, aggregateType, payload, opts...),
		SourceContext: sourceContext,
	}
}

// Topic derives the in-application broadcast topic: "{aggregate_type}:{event_type}".
func (e DomainEvent) Topic() string {
	return e.AggregateType + ":" + string(e.EventType)
}

// Topic derives the contractual cross-context topic:
// "integration:{source_context}:{event_type}".
func (e IntegrationEvent) Topic() string {
	return "integration:" + e.SourceContext + ":" + string(e.EventType)
}

// Equal reports value equality over all fields, including EventID.
func (e DomainEvent) Equal(other DomainEvent) bool {
	return e.EventID == other.EventID &&
		e.EventType == other.EventType &&
		reflect.DeepEqual(e.AggregateID, other.AggregateID) &&
		e.AggregateType == other.AggregateType &&
		reflect.DeepEqual(e.Payload, other.Payload) &&
		e.Criticality == other.Criticality &&
		e.CorrelationID == other.CorrelationID &&
		e.CausationID == other.CausationID &&
		e.OccurredAt.Equal(other.OccurredAt)
}

// Equal reports value equality over all fields, including EventID.
func (e IntegrationEvent) Equal(other IntegrationEvent) bool {
	return e.SourceContext == other.SourceContext && e.DomainEvent.Equal(other.DomainEvent)
}

func clonePayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}

	return maps.Clone(p)
}
