package infrastructure

import (
	"fmt"

	"phlock/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeSwapApplied:
		return "roster.swap.applied"
	case events.EventTypeSwapDeferred:
		return "roster.swap.deferred"
	case events.EventTypeSwapCancelled:
		return "roster.swap.cancelled"
	case events.EventTypeDailyPickRecorded:
		return "picks.daily.recorded"
	case events.EventTypeStreakMilestone:
		return "picks.streak.milestone"
	case events.EventTypeSocialCurrencyMove:
		return "currency.social.moved"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"roster.swap.applied",
		"roster.swap.deferred",
		"roster.swap.cancelled",
		"picks.daily.recorded",
		"picks.streak.milestone",
		"currency.social.moved",
	}
}
