package event

import (
	"encoding/json"
	"time"
)

// Envelope is the wire form of an event crossing the broadcast primitive.
// It wraps both domain and integration events; SourceContext is empty for
// plain domain events.
type Envelope struct {
	EventID       string         `json:"event_id"`
	EventType     Type           `json:"event_type"`
	AggregateID   any            `json:"aggregate_id,omitempty"`
	AggregateType string         `json:"aggregate_type,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	Criticality   Criticality    `json:"criticality,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	CausationID   string         `json:"causation_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
	SourceContext string         `json:"source_context,omitempty"`
}

// Event is the publishable surface shared by DomainEvent and IntegrationEvent:
// a derived topic plus the wire form.
type Event interface {
	Topic() string
	Envelope() Envelope
}

// Envelope returns the wire form of the event.
func (e DomainEvent) Envelope() Envelope {
	return Envelope{
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		Criticality:   e.Criticality,
		CorrelationID: e.CorrelationID,
		CausationID:   e.CausationID,
		OccurredAt:    e.OccurredAt,
	}
}

// Envelope returns the wire form of the event, carrying the source context.
func (e IntegrationEvent) Envelope() Envelope {
	env := e.DomainEvent.Envelope()
	env.SourceContext = e.SourceContext

	return env
}

// IsIntegration reports whether the envelope carries an integration event.
func (env Envelope) IsIntegration() bool { return env.SourceContext != "" }

// Domain reconstructs the wrapped domain event.
func (env Envelope) Domain() DomainEvent {
	crit := env.Criticality
	if crit == "" {
		crit = CriticalityNormal
	}

	return DomainEvent{
		EventID:       env.EventID,
		EventType:     env.EventType,
		AggregateID:   env.AggregateID,
		AggregateType: env.AggregateType,
		Payload:       env.Payload,
		Criticality:   crit,
		CorrelationID: env.CorrelationID,
		CausationID:   env.CausationID,
		OccurredAt:    env.OccurredAt,
	}
}

// Integration reconstructs the wrapped integration event.
func (env Envelope) Integration() IntegrationEvent {
	return IntegrationEvent{DomainEvent: env.Domain(), SourceContext: env.SourceContext}
}

// Decode parses wire data into an envelope. It reports ok=false for payloads
// that are not events (malformed JSON or missing the event_type tag) so
// subscribers can drop non-event traffic silently.
func Decode(data []byte) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, false
	}

	if env.EventType == "" {
		return Envelope{}, false
	}

	return env, true
}
