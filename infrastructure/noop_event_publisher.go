package infrastructure

import (
	"phlock/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing
// Useful for testing and operational tooling where events should not be emitted
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	// No-op
	return nil
}
