package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSwapApplied        EventType = "swap_applied"
	EventTypeSwapDeferred       EventType = "swap_deferred"
	EventTypeSwapCancelled      EventType = "swap_cancelled"
	EventTypeDailyPickRecorded  EventType = "daily_pick_recorded"
	EventTypeStreakMilestone    EventType = "streak_milestone"
	EventTypeSocialCurrencyMove EventType = "social_currency_move"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// SwapAppliedEvent represents a roster slot change that took effect
type SwapAppliedEvent struct {
	OwnerID           uuid.UUID
	Position          int
	OutgoingCuratorID *uuid.UUID
	IncomingCuratorID uuid.UUID
	EffectiveDate     time.Time
	// Deferred is true when the day-boundary job applied the swap rather
	// than the original request.
	Deferred bool
}

func (e SwapAppliedEvent) Type() EventType {
	return EventTypeSwapApplied
}

// SwapDeferredEvent represents a swap request queued for the next day boundary
type SwapDeferredEvent struct {
	OwnerID           uuid.UUID
	Position          int
	OutgoingCuratorID *uuid.UUID
	IncomingCuratorID uuid.UUID
	EffectiveDate     time.Time
}

func (e SwapDeferredEvent) Type() EventType {
	return EventTypeSwapDeferred
}

// SwapCancelledEvent represents a pending swap withdrawn before its boundary
type SwapCancelledEvent struct {
	OwnerID           uuid.UUID
	Position          int
	IncomingCuratorID uuid.UUID
	EffectiveDate     time.Time
}

func (e SwapCancelledEvent) Type() EventType {
	return EventTypeSwapCancelled
}

// DailyPickRecordedEvent represents a user's accepted pick for a day
type DailyPickRecordedEvent struct {
	UserID      uuid.UUID
	PickDate    time.Time
	ItemRef     string
	StreakCount int
}

func (e DailyPickRecordedEvent) Type() EventType {
	return EventTypeDailyPickRecorded
}

// StreakMilestoneEvent represents a streak crossing a milestone length
type StreakMilestoneEvent struct {
	UserID      uuid.UUID
	StreakCount int
	PickDate    time.Time
}

func (e StreakMilestoneEvent) Type() EventType {
	return EventTypeStreakMilestone
}

// SocialCurrencyMoveEvent represents a curator's slot count moving in
// lockstep with a roster write
type SocialCurrencyMoveEvent struct {
	CuratorID uuid.UUID
	OwnerID   uuid.UUID
	Position  int
	Delta     int
	NewCount  int
}

func (e SocialCurrencyMoveEvent) Type() EventType {
	return EventTypeSocialCurrencyMove
}
