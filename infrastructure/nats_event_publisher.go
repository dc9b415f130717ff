package infrastructure

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"phlock/domain/events"
	"phlock/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// eventStreamName is the JetStream stream that carries all domain events.
const eventStreamName = "phlock_events"

// EventEnvelope is the wire format wrapped around every published event
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	OccurredAt    time.Time       `json:"occurredAt"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface over JetStream.
// Delivery is fire-and-forget: downstream consumers must tolerate missing
// events, and a publish failure never fails the operation that raised it.
type NATSEventPublisher struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
	}
}

// Publish wraps the event in an envelope and sends it to the event's subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	eventType := event.Type()
	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(eventType),
		OccurredAt:    time.Now().UTC(),
		SourceService: natsConnectionName,
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.natsClient.Publish(subject, envelopeData); err != nil {
		// A missing stream means nobody is listening yet; the event is
		// droppable by contract.
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		metrics.RecordNATSMessagePublished(string(eventType))
		// Counter moves only reach this point after their transaction
		// committed, so summing deltas here keeps the occupancy gauge in
		// step with the roster.
		if move, ok := event.(events.SocialCurrencyMoveEvent); ok {
			metrics.UpdateOccupiedSlots(int64(move.Delta))
		}
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// EnsureDomainEventStream ensures the event stream exists and covers every
// subject the engine publishes to
func (p *NATSEventPublisher) EnsureDomainEventStream() error {
	return p.natsClient.ensureStream(eventStreamName, p.subjectMapper.GetAllSubjects())
}
